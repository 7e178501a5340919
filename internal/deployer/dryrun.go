package deployer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/specialistvlad/deploygrid/internal/component"
)

// DryRun derives a pseudo address from the component name and its resolved
// config. The same input always yields the same handle.
func DryRun(ctx context.Context, name string, cfg component.Config) (component.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	buf, err := MarshalConfig(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.New()
	sum.Write([]byte(name))
	sum.Write(buf)
	return component.Handle("0x" + hex.EncodeToString(sum.Sum(nil))[:40]), nil
}
