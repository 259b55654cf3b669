package registry

import (
	"io"

	"github.com/cottand/tenet/frontend/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type functionFile struct {
	Functions []functionEntry `yaml:"functions"`
}

type functionEntry struct {
	Name       string   `yaml:"name"`
	Aliases    []string `yaml:"aliases"`
	Arity      *int     `yaml:"arity"`
	MinArity   int      `yaml:"min_arity"`
	Params     []string `yaml:"params"`
	Return     string   `yaml:"return"`
	Reducer    bool     `yaml:"reducer"`
	Signatures []string `yaml:"signatures"`
}

// LoadYAML reads function definitions such as
//
//	functions:
//	  - name: discount
//	    arity: 2
//	    params: [numeric, numeric]
//	    return: float
//	    signatures: ["(i),(i|1)->(i)"]
//
// An omitted arity means the function is variadic. The definitions are validated
// when they are registered, not here.
func LoadYAML(r io.Reader) ([]*Function, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file functionFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode function registry")
	}

	fns := make([]*Function, 0, len(file.Functions))
	for i, entry := range file.Functions {
		if entry.Name == "" {
			return nil, errors.Errorf("function #%d has no name", i+1)
		}
		fn := &Function{
			Name:       entry.Name,
			Aliases:    entry.Aliases,
			Arity:      Variadic,
			MinArity:   entry.MinArity,
			Return:     entry.Return,
			Reducer:    entry.Reducer,
			Signatures: entry.Signatures,
		}
		if entry.Arity != nil {
			fn.Arity = *entry.Arity
		}
		if fn.Return == "" {
			fn.Return = types.Any.TypeName()
		}
		for _, p := range entry.Params {
			fn.Params = append(fn.Params, types.Constraint(p))
		}
		fns = append(fns, fn)
	}
	return fns, nil
}
