package config

// Build describes how the Flutter desktop client is built.
// - Tool: executable name searched on PATH, or an absolute path used as-is.
// - Args: arguments passed to the tool; "{target}" is replaced with Target.
// - Target: desktop platform to build ("windows", "linux", "macos").
// - ClientDir: directory under the source root the tool runs in.
type Build struct {
	Tool      string   `yaml:"tool"`
	Args      []string `yaml:"args"`
	Target    string   `yaml:"target"`
	ClientDir string   `yaml:"client_dir"`
}

// Install describes the optional package installed into each output directory.
// - Enabled: turn the step off entirely.
// - Tool: package manager executable (pip).
// - Package: package name passed to "install".
// - Marker: substring an output directory must contain to receive the package.
type Install struct {
	Enabled bool   `yaml:"enabled"`
	Tool    string `yaml:"tool"`
	Package string `yaml:"package"`
	Marker  string `yaml:"marker"`
}

// Config is the full set of inputs for one deploy run.
type Config struct {
	SourceRoot    string   `yaml:"source_root"`
	OutputDirs    []string `yaml:"output_dirs"`
	Exclusions    []string `yaml:"exclusions"`
	Build         Build    `yaml:"build"`
	Install       Install  `yaml:"install"`
	ClientArchive string   `yaml:"client_archive"` // prebuilt desktop bundle used instead of building
	Parallel      bool     `yaml:"parallel"`
}

// Targets lists the build targets the path layout knows about.
var Targets = []string{"windows", "linux", "macos"}

// Default returns the built-in configuration used when no config file is given.
// Every call returns fresh slices, so callers may append without affecting each other.
func Default() Config {
	return Config{
		SourceRoot: `H:\Flutter\flet-v1`,
		OutputDirs: []string{
			`G:\Folder\venv\Lib\site-packages`,
		},
		Exclusions: []string{"*.pyc", "*.pdb", "*.log"},
		Build: Build{
			Tool:      "flutter",
			Args:      []string{"build", "{target}"},
			Target:    "windows",
			ClientDir: "client",
		},
		Install: Install{
			Enabled: true,
			Tool:    "pip",
			Package: "msgpack",
			Marker:  "site-packages",
		},
	}
}

// BuildArgs returns the build arguments with the target placeholder expanded.
func (c Config) BuildArgs() []string {
	args := make([]string, 0, len(c.Build.Args))
	for _, a := range c.Build.Args {
		if a == "{target}" {
			a = c.Build.Target
		}
		args = append(args, a)
	}
	return args
}
