// Package planfile loads component descriptors from a mix of HCL and YAML
// plan files and directories.
package planfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/ctxlog"
	"github.com/specialistvlad/deploygrid/internal/hclplan"
	"github.com/specialistvlad/deploygrid/internal/yamlplan"
)

// Format identifies a plan file syntax.
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, bool) {
	switch filepath.Ext(path) {
	case ".hcl":
		return FormatHCL, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Load parses every plan file found under paths and returns the merged
// descriptors sorted by name. A component declared twice, in any format,
// is an error.
func Load(ctx context.Context, paths ...string) ([]component.Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no plan paths given")
	}

	files, err := findPlanFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no plan files found in %v", paths)
	}
	logger.Debug("Discovered plan files.", "count", len(files))

	hclParser := hclplan.NewParser()
	var yamlDescriptors []component.Descriptor
	origin := make(map[string]string)

	for _, file := range files {
		format, _ := FormatOf(file)
		switch format {
		case FormatHCL:
			if err := hclParser.ParseFile(file); err != nil {
				return nil, err
			}
		case FormatYAML:
			ds, err := yamlplan.ParseFile(file)
			if err != nil {
				return nil, err
			}
			for _, d := range ds {
				if prev, dup := origin[d.Name]; dup {
					return nil, fmt.Errorf("component %q declared in both %s and %s", d.Name, prev, file)
				}
				origin[d.Name] = file
			}
			yamlDescriptors = append(yamlDescriptors, ds...)
		}
		logger.Debug("Parsed plan file.", "path", file, "format", format)
	}

	out := hclParser.Descriptors()
	for _, d := range out {
		if prev, dup := origin[d.Name]; dup {
			return nil, fmt.Errorf("component %q declared in both %s and an HCL plan file", d.Name, prev)
		}
	}
	out = append(out, yamlDescriptors...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	logger.Debug("Plan loading complete.", "components", len(out))
	return out, nil
}

// findPlanFiles walks the given paths and returns a sorted, de-duplicated
// list of plan files. A path given explicitly must exist.
func findPlanFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if _, ok := FormatOf(path); !ok {
				return nil, fmt.Errorf("unsupported plan file %s: expected .hcl, .yaml or .yml", path)
			}
			add(filepath.Clean(path))
			continue
		}

		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := FormatOf(p); ok {
				add(filepath.Clean(p))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
