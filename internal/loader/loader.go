// Package loader reads module fragment files into the IR. Fragments are
// declarative YAML documents produced ahead of linking; the loader is the
// boundary where the surface syntax ends and the core begins.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blueprintdsl/blueprint/internal/config"
	"github.com/blueprintdsl/blueprint/internal/model"
	"github.com/blueprintdsl/blueprint/internal/typesystem"
)

// exprNode decodes an expression scalar while capturing its position in
// the fragment file, so diagnostics can point at the exact line.
type exprNode struct {
	Text   string
	Line   int
	Column int
}

func (e *exprNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expression must be a scalar", value.Line)
	}
	e.Text = value.Value
	e.Line = value.Line
	e.Column = value.Column
	return nil
}

type fieldDoc struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Target  string   `yaml:"target"`
	Default exprNode `yaml:"default"`
	Visible exprNode `yaml:"visible"`
}

type transitionDoc struct {
	Name  string   `yaml:"name"`
	From  string   `yaml:"from"`
	To    string   `yaml:"to"`
	Guard exprNode `yaml:"guard"`
}

type entityDoc struct {
	Name        string          `yaml:"name"`
	Fields      []fieldDoc      `yaml:"fields"`
	Transitions []transitionDoc `yaml:"transitions"`
}

type fragmentDoc struct {
	Module   string      `yaml:"module"`
	Uses     []string    `yaml:"uses"`
	Entities []entityDoc `yaml:"entities"`
}

// IsFragmentFile reports whether path has a recognized fragment extension.
func IsFragmentFile(path string) bool {
	for _, ext := range config.FragmentFileExts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// LoadBytes parses one fragment. path is recorded as the module's source
// identity.
func LoadBytes(path string, data []byte) (*model.Module, error) {
	var doc fragmentDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Module == "" {
		return nil, fmt.Errorf("%s: missing module name", path)
	}

	mod := &model.Module{Name: doc.Module, File: path, Uses: doc.Uses}
	for _, ed := range doc.Entities {
		if ed.Name == "" {
			return nil, fmt.Errorf("%s: entity without a name in module '%s'", path, doc.Module)
		}
		entity := &model.Entity{Name: ed.Name, Module: doc.Module}
		for _, fd := range ed.Fields {
			if fd.Name == "" {
				return nil, fmt.Errorf("%s: field without a name in entity '%s'", path, ed.Name)
			}
			field := &model.Field{
				Name:     fd.Name,
				TypeName: fd.Type,
				Default:  model.ExprSource(fd.Default),
				Visible:  model.ExprSource(fd.Visible),
			}
			if fd.Type == "ref" {
				if fd.Target == "" {
					return nil, fmt.Errorf("%s: ref field '%s.%s' has no target", path, ed.Name, fd.Name)
				}
				field.Ref = fd.Target
				field.Type = typesystem.ANY
			} else {
				field.Type = typesystem.FromName(fd.Type)
			}
			entity.Fields = append(entity.Fields, field)
		}
		for _, td := range ed.Transitions {
			entity.Transitions = append(entity.Transitions, &model.Transition{
				Name:  td.Name,
				From:  td.From,
				To:    td.To,
				Guard: model.ExprSource(td.Guard),
			})
		}
		mod.Entities = append(mod.Entities, entity)
	}
	return mod, nil
}

// LoadFile parses one fragment file.
func LoadFile(path string) (*model.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(path, data)
}

// LoadDir loads every fragment under dir, recursively, in path order.
func LoadDir(dir string) ([]*model.Module, error) {
	return LoadDirOverlay(dir, nil)
}

// LoadDirOverlay is LoadDir with in-memory contents taking precedence over
// the files on disk, keyed by absolute path. Used by the language server
// to validate unsaved buffers.
func LoadDirOverlay(dir string, overlay map[string][]byte) ([]*model.Module, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsFragmentFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	seen := make(map[string]string) // module name -> file
	var mods []*model.Module
	for _, path := range paths {
		var mod *model.Module
		var loadErr error
		if data, ok := overlayLookup(overlay, path); ok {
			mod, loadErr = LoadBytes(path, data)
		} else {
			mod, loadErr = LoadFile(path)
		}
		if loadErr != nil {
			return nil, loadErr
		}
		if prev, dup := seen[mod.Name]; dup {
			return nil, fmt.Errorf("module '%s' declared in both %s and %s", mod.Name, prev, path)
		}
		seen[mod.Name] = path
		mods = append(mods, mod)
	}
	return mods, nil
}

func overlayLookup(overlay map[string][]byte, path string) ([]byte, bool) {
	if overlay == nil {
		return nil, false
	}
	if data, ok := overlay[path]; ok {
		return data, true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	data, ok := overlay[abs]
	return data, ok
}
