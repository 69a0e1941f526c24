package ballot

import (
	_ "embed"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

// DecodeCUE evaluates a CUE election document, unifies it with the
// #Election schema and decodes the concrete result.
//
// Schema violations (a seat count below one, an unknown quota name, a
// candidate without an id) are reported with the CUE source position.
func DecodeCUE(data []byte, file string) (Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Document{}, cueError(err, "schema.cue")
	}

	value := ctx.CompileBytes(data, cue.Filename(file))
	if err := value.Err(); err != nil {
		return Document{}, cueError(err, file)
	}

	unified := schema.LookupPath(cue.ParsePath("#Election")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Document{}, cueError(err, file)
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return Document{}, cueError(err, file)
	}
	return doc, nil
}

// cueError converts the first CUE error into a ParseError, keeping its
// source position when CUE provides one.
func cueError(err error, file string) *ParseError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return invalidf("%v", err).at(file, 0, 0)
	}
	first := errs[0]
	pe := invalidf("%s", first.Error())
	pe.File = file
	if pos := first.Position(); pos.IsValid() {
		pe.Line = pos.Line()
		pe.Column = pos.Column()
	} else {
		for _, p := range first.InputPositions() {
			if p.IsValid() && p.Filename() == file {
				pe.Line = p.Line()
				pe.Column = p.Column()
				break
			}
		}
	}
	if path := first.Path(); len(path) > 0 {
		pe.Field = strings.Join(path, ".")
	}
	return pe
}
