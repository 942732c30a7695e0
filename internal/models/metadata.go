package models

// ScriptSlot identifies one of the lifecycle scriptlet hooks.
type ScriptSlot int

const (
	PreInstall ScriptSlot = iota
	PostInstall
	PreUninstall
	PostUninstall
	PreTrans
	PostTrans
	PreUntrans
	PostUntrans
)

// ScriptSlots lists every slot in header order.
var ScriptSlots = []ScriptSlot{
	PreInstall, PostInstall, PreUninstall, PostUninstall,
	PreTrans, PostTrans, PreUntrans, PostUntrans,
}

// Key returns the metadata key prefix of the slot, e.g. "pre_install".
func (s ScriptSlot) Key() string {
	switch s {
	case PreInstall:
		return "pre_install"
	case PostInstall:
		return "post_install"
	case PreUninstall:
		return "pre_uninstall"
	case PostUninstall:
		return "post_uninstall"
	case PreTrans:
		return "pre_trans"
	case PostTrans:
		return "post_trans"
	case PreUntrans:
		return "pre_untrans"
	case PostUntrans:
		return "post_untrans"
	default:
		return "unknown"
	}
}

func (s ScriptSlot) String() string {
	return s.Key()
}

// MarshalText lets slots key maps in YAML output.
func (s ScriptSlot) MarshalText() ([]byte, error) {
	return []byte(s.Key()), nil
}

// Scriptlet flag bits
const (
	ScriptExpand   uint32 = 1 << 0
	ScriptQFormat  uint32 = 1 << 1
	ScriptCritical uint32 = 1 << 2
)

// Scriptlet is a lifecycle hook bundled with the package.
type Scriptlet struct {
	Body  string   `yaml:"body"`
	Flags uint32   `yaml:"flags,omitempty"`
	Prog  []string `yaml:"prog,omitempty"`
}

// Metadata is the canonical package description after all configuration
// layers have been folded.
type Metadata struct {
	Name      string
	Version   string
	Release   string
	Epoch     uint32
	License   string
	Summary   string
	URL       string
	Vendor    string
	Arch      string
	AutoReq   string
	RequireSh bool

	Assets    []AssetSpec
	Requires  []Dependency
	Obsoletes []Dependency
	Conflicts []Dependency
	Provides  []Dependency

	// Scripts holds bodies as written in the configuration; they may still
	// be file references until loaded.
	Scripts map[ScriptSlot]Scriptlet
}
