package settings

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/prizm-build/wheelhouse/pkg/settings/literals"
	"github.com/samber/lo"
	shExpand "mvdan.cc/sh/v3/expand"
	shSyntax "mvdan.cc/sh/v3/syntax"
)

// The values read from a settings file.
type Settings struct {
	// The package name.
	PkgName string
	// The package version.
	PkgVersion string
	// Every other assignment in the file, exported to external commands.
	Extra map[string]string
}

// Get the extra assignments as sorted `key=value` pairs.
func (s Settings) ExtraPairs() []string {
	keys := lo.Keys(s.Extra)
	sort.Strings(keys)

	return lo.Map(keys, func(key string, _ int) string {
		return fmt.Sprintf("%s=%s", key, s.Extra[key])
	})
}

// Collect the assignments of a single statement. References like `$BASE_VERSION` expand to the values assigned so far in `vars`, then to the process environment.
func parseAssigns(stmt *shSyntax.Stmt, vars map[string]string) []error {
	var errorList []error

	line := stmt.Pos().Line()

	var assigns []*shSyntax.Assign
	switch cmd := stmt.Cmd.(type) {
	case *shSyntax.CallExpr:
		if len(cmd.Args) != 0 {
			return []error{fmt.Errorf("top-level command execution disallowed (line %d)", line)}
		}
		assigns = cmd.Assigns

	case *shSyntax.DeclClause:
		if cmd.Variant.Value != "export" {
			return []error{fmt.Errorf("'%s' is not allowed in a settings file (line %d)", cmd.Variant.Value, line)}
		}
		assigns = cmd.Args

	case *shSyntax.FuncDecl:
		return []error{fmt.Errorf("function '%s' is not allowed in a settings file (line %d)", cmd.Name.Value, line)}

	default:
		return []error{fmt.Errorf("only variable assignments are allowed in a settings file (line %d)", line)}
	}

	if stmt.Background || stmt.Negated || len(stmt.Redirs) != 0 {
		return []error{fmt.Errorf("only variable assignments are allowed in a settings file (line %d)", line)}
	}

	for _, assign := range assigns {
		// `export NAME` without a value only marks the variable.
		if assign.Naked {
			continue
		}

		name := assign.Name.Value
		if assign.Array != nil || assign.Index != nil || assign.Append {
			errorList = append(errorList, fmt.Errorf("variable '%s' must be a plain string (line %d)", name, line))
			continue
		}

		value := ""
		if assign.Value != nil {
			cfg := &shExpand.Config{
				Env: shExpand.ListEnviron(append(os.Environ(), lo.MapToSlice(vars, func(k, v string) string {
					return fmt.Sprintf("%s=%s", k, v)
				})...)...),
			}

			expanded, err := shExpand.Literal(cfg, assign.Value)
			if err != nil {
				errorList = append(errorList, fmt.Errorf("failed to parse variable value for '%s': %w (line %d)", name, err, line))
				continue
			}
			value = expanded
		}

		vars[name] = value
	}

	return errorList
}

// Parse an [io.Reader] into new [Settings]. The `error` slice is `nil` unless errors were found.
func Parse(input io.Reader) (Settings, []error) {
	var errorList []error

	parser := shSyntax.NewParser()
	parsedFile, err := parser.Parse(input, "settings")
	if err != nil {
		errorList = append(errorList, fmt.Errorf("shell parser error: %w", err))
		return Settings{}, errorList
	}

	vars := map[string]string{}
	for _, stmt := range parsedFile.Stmts {
		if errs := parseAssigns(stmt, vars); errs != nil {
			errorList = append(errorList, errs...)
		}
	}

	// Ensure all needed values have been filled out.
	for _, name := range []string{literals.PkgName, literals.PkgVersion} {
		if len(vars[name]) == 0 {
			errorList = append(errorList, fmt.Errorf("variable '%s' is required", name))
		}
	}

	if errorList != nil {
		return Settings{}, errorList
	}

	extra := lo.OmitByKeys(vars, []string{literals.PkgName, literals.PkgVersion})

	return Settings{
		PkgName:    vars[literals.PkgName],
		PkgVersion: vars[literals.PkgVersion],
		Extra:      extra,
	}, nil
}

// Open and parse the settings file at `path`. The `error` slice is `nil` unless errors were found.
func Load(path string) (Settings, []error) {
	file, err := os.Open(path)
	if err != nil {
		return Settings{}, []error{fmt.Errorf("failed to open settings file: %w", err)}
	}
	defer file.Close()

	return Parse(file)
}
