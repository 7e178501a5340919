package deployer

import (
	"fmt"
	"time"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Kind names a deployer implementation.
type Kind string

const (
	KindDryRun Kind = "dryrun"
	KindHTTP   Kind = "http"
)

// Options selects and configures a deployer.
type Options struct {
	Kind    Kind
	URL     string
	Timeout time.Duration
}

// New builds the deploy function described by opts, wrapped with Logging.
func New(opts Options) (orchestrator.DeployFunc, error) {
	var fn orchestrator.DeployFunc
	switch opts.Kind {
	case KindDryRun, "":
		fn = DryRun
	case KindHTTP:
		if opts.URL == "" {
			return nil, fmt.Errorf("http deployer requires a service URL")
		}
		fn = NewHTTP(opts.URL, opts.Timeout).Deploy
	default:
		return nil, fmt.Errorf("unknown deployer %q", opts.Kind)
	}
	return Logging(fn), nil
}

// ConfigValue returns cfg as a cty object.
func ConfigValue(cfg component.Config) cty.Value {
	if len(cfg) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(cfg)
}

// MarshalConfig encodes cfg as JSON with attributes in lexical order.
func MarshalConfig(cfg component.Config) ([]byte, error) {
	val := ConfigValue(cfg)
	buf, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf, nil
}
