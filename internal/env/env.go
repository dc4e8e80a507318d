package env

import (
	"fmt"
	"os"

	"github.com/prizm-build/wheelhouse/pkg/settings"
	"github.com/prizm-build/wheelhouse/pkg/settings/literals"
	"github.com/prizm-build/wheelhouse/pkg/wheel"
	shExpand "mvdan.cc/sh/v3/expand"
)

// Get the environment passed to external commands as `key=value` pairs: the process environment, every extra settings assignment, then the package variables. `extraVars` is an optional list of extra variables to inject (i.e. `key=value`).
func GetVars(vars *settings.Settings, extraVars ...string) []string {
	envVars := os.Environ()
	envVars = append(envVars, vars.ExtraPairs()...)
	envVars = append(envVars, fmt.Sprintf("%s=%s", literals.PkgName, vars.PkgName))
	envVars = append(envVars, fmt.Sprintf("%s=%s", literals.PkgVersion, vars.PkgVersion))
	envVars = append(envVars, fmt.Sprintf("%s=%s", literals.WheelBasename, wheel.Basename(vars.PkgName, vars.PkgVersion)))
	envVars = append(envVars, extraVars...)

	return envVars
}

// Get an [shExpand.Environ] implementation with the package variables incorporated. Later pairs override earlier ones.
func GetEnviron(vars *settings.Settings, extraVars ...string) shExpand.Environ {
	return shExpand.ListEnviron(GetVars(vars, extraVars...)...)
}
