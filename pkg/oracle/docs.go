package oracle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"startyping/checker-go/pkg/types"
)

// DocFile is the on-disk description of builtin functions and of the
// members of named types.
type DocFile struct {
	Functions []DocMember `yaml:"functions" json:"functions"`
	Types     []DocType   `yaml:"types" json:"types"`
}

type DocType struct {
	Name    string      `yaml:"name" json:"name"`
	Members []DocMember `yaml:"members" json:"members"`
}

// DocMember is a callable when Params or Return is set, otherwise a plain
// attribute typed by Type.
type DocMember struct {
	Name   string     `yaml:"name" json:"name"`
	Params []DocParam `yaml:"params" json:"params"`
	Return string     `yaml:"return" json:"return"`
	Type   string     `yaml:"type" json:"type"`
}

type DocParam struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"`
	Kind    string `yaml:"kind" json:"kind"`
	Default bool   `yaml:"default" json:"default"`
}

func (m DocMember) callable() bool {
	return m.Type == "" || len(m.Params) > 0 || m.Return != ""
}

// Docs is an oracle whose facts come from DocFiles.
type Docs struct {
	functions map[string]*types.Signature
	members   map[string]map[string]types.Ty
}

// LoadDocs reads a docs file; .yml/.yaml is YAML, anything else is JSON
// with comments and trailing commas allowed.
func LoadDocs(path string) (*Docs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("oracle: read docs %s: %w", path, err)
	}
	var file DocFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		file, err = DecodeDocsYAML(bytes.NewReader(data))
	default:
		file, err = DecodeDocsJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("oracle: %s: %w", path, err)
	}
	return NewDocs(file)
}

func DecodeDocsYAML(r io.Reader) (DocFile, error) {
	var file DocFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return DocFile{}, nil
		}
		return DocFile{}, fmt.Errorf("decode docs: %w", err)
	}
	return file, nil
}

func DecodeDocsJSON(data []byte) (DocFile, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return DocFile{}, fmt.Errorf("decode docs: %w", err)
	}
	var file DocFile
	decoder := json.NewDecoder(bytes.NewReader(std))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return DocFile{}, fmt.Errorf("decode docs: %w", err)
	}
	return file, nil
}

// NewDocs converts a DocFile into oracle tables, collecting every malformed
// entry into one error.
func NewDocs(file DocFile) (*Docs, error) {
	d := &Docs{
		functions: make(map[string]*types.Signature),
		members:   make(map[string]map[string]types.Ty),
	}
	var issues []error
	for _, f := range file.Functions {
		sig, err := docSignature(f)
		if err != nil {
			issues = append(issues, fmt.Errorf("function %s: %w", f.Name, err))
			continue
		}
		d.functions[f.Name] = sig
	}
	for _, typ := range file.Types {
		key := docKindKey(typ.Name)
		table := d.members[key]
		if table == nil {
			table = make(map[string]types.Ty)
			d.members[key] = table
		}
		for _, m := range typ.Members {
			ty, err := docMemberType(m)
			if err != nil {
				issues = append(issues, fmt.Errorf("type %s member %s: %w", typ.Name, m.Name, err))
				continue
			}
			table[m.Name] = ty
		}
	}
	if len(issues) > 0 {
		return nil, errors.Join(issues...)
	}
	return d, nil
}

func docMemberType(m DocMember) (types.Ty, error) {
	if !m.callable() {
		return types.ParseTypeExpr(m.Type)
	}
	sig, err := docSignature(m)
	if err != nil {
		return types.Ty{}, err
	}
	return types.Function(sig), nil
}

func docSignature(m DocMember) (*types.Signature, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	params := make([]types.Param, 0, len(m.Params))
	for _, p := range m.Params {
		kind := p.Kind
		if kind == "" {
			kind = types.ParamPosOrNamed.String()
		}
		mode, err := types.ParseParamMode(kind)
		if err != nil {
			return nil, err
		}
		ty := types.Any()
		if p.Type != "" {
			if ty, err = types.ParseTypeExpr(p.Type); err != nil {
				return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
			}
		}
		optional := p.Default || mode == types.ParamArgs || mode == types.ParamKwargs
		params = append(params, types.Param{Mode: mode, Name: p.Name, Type: ty, Optional: optional})
	}
	result := types.Any()
	if m.Return != "" {
		var err error
		if result, err = types.ParseTypeExpr(m.Return); err != nil {
			return nil, fmt.Errorf("return: %w", err)
		}
	}
	return types.NewSignature(params, result)
}

// docKindKey maps a documented type name onto the key KindKey produces, so
// "string" and "str" address the same table.
func docKindKey(name string) string {
	if b, ok := types.ResolveName(name, nil, false).Single(); ok {
		return KindKey(b)
	}
	return name
}

func (d *Docs) Attribute(recv types.BasicType, name string) (types.Ty, Status) {
	table, ok := d.members[KindKey(recv)]
	if !ok {
		return types.Any(), Unknown
	}
	if ty, ok := table[name]; ok {
		return ty, Known
	}
	return types.Any(), Unknown
}

func (d *Docs) BinOp(string, types.BasicType, types.BasicType) (types.Ty, Status) {
	return types.Any(), Unknown
}

func (d *Docs) Signature(name string) (*types.Signature, Status) {
	if sig, ok := d.functions[name]; ok {
		return sig, Known
	}
	return nil, Unknown
}

// Functions lists the documented global names in sorted order.
func (d *Docs) Functions() []string {
	out := maps.Keys(d.functions)
	slices.Sort(out)
	return out
}
