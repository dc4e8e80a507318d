package literals

const (
	// `PKG_NAME`
	PkgName = "PKG_NAME"
	// `PKG_VERSION`
	PkgVersion = "PKG_VERSION"
)

const (
	// The environment variable holding the derived wheel filename.
	WheelBasename = "WHEEL_BASENAME"
)
