package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/ctxlog"
	"github.com/vk/monoplan/internal/schema"
)

// ConfigFileName is the well-known name of a monoplan configuration file,
// both at the workspace root and inside member packages.
const ConfigFileName = "monoplan.hcl"

// Loader reads HCL workspace configuration from disk.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader with a fresh parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load implements config.Loader. The path may point at the root
// configuration file directly or at the workspace root directory.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access config path '%s': %w", path, err)
	}
	rootFile := path
	rootDir := filepath.Dir(path)
	if info.IsDir() {
		rootDir = path
		rootFile = filepath.Join(path, ConfigFileName)
	}
	logger.Debug("Loading workspace configuration.", "file", rootFile)

	hclFile, diags := l.parser.ParseHCLFile(rootFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse '%s': %w", rootFile, diags)
	}

	var root schema.RootConfig
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode '%s': %w", rootFile, diags)
	}

	model := &config.Model{RootTasks: translateTasks(root.Tasks)}
	logger.Debug("Root task layer loaded.", "task_count", len(model.RootTasks))

	if root.Workspace == nil {
		return model, nil
	}

	packages, err := translatePackages(root.Workspace)
	if err != nil {
		return nil, err
	}
	for _, name := range packages {
		pkg, err := l.loadPackage(ctx, rootDir, name)
		if err != nil {
			return nil, err
		}
		model.Packages = append(model.Packages, pkg)
	}
	logger.Debug("Workspace packages loaded.", "package_count", len(model.Packages))

	return model, nil
}

// loadPackage reads one member package's optional configuration layer. A
// package without its own config file is still a valid member; it simply
// inherits everything from the root layer.
func (l *Loader) loadPackage(ctx context.Context, rootDir, name string) (*config.Package, error) {
	logger := ctxlog.FromContext(ctx)
	pkg := &config.Package{
		Name:  name,
		Dir:   name,
		Tasks: map[string]*config.TaskDefinition{},
	}

	pkgFile := filepath.Join(rootDir, name, ConfigFileName)
	if _, err := os.Stat(pkgFile); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Package has no config file, using root layer only.", "package", name)
			return pkg, nil
		}
		return nil, fmt.Errorf("failed to access package config '%s': %w", pkgFile, err)
	}

	hclFile, diags := l.parser.ParseHCLFile(pkgFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse '%s': %w", pkgFile, diags)
	}

	var pkgConfig schema.PackageConfig
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &pkgConfig); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode '%s': %w", pkgFile, diags)
	}

	pkg.Tasks = translateTasks(pkgConfig.Tasks)
	logger.Debug("Package task layer loaded.", "package", name, "task_count", len(pkg.Tasks))
	return pkg, nil
}
