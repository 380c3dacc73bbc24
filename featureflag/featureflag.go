package featureflag

// FeatureFlag is the set of flags a server was started with. Flags
// suppress individual editor behaviors, a missing flag means the
// behavior is on.
type FeatureFlag map[Flag]struct{}

// New builds the flag set from the raw strings of a configuration
// list. Unknown strings are carried along so new flags can roll out
// through configuration alone.
func New(flags []string) FeatureFlag {
	ff := make(FeatureFlag, len(flags))
	for _, f := range flags {
		ff[Flag(f)] = struct{}{}
	}
	return ff
}

// Set reports whether the flag was given at startup.
func (f FeatureFlag) Set(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfNotSet runs do unless the flag is set. Broadcast and split
// suppression wrap their sending step in this.
func (f FeatureFlag) IfNotSet(flag Flag, do func()) {
	if f.Set(flag) {
		return
	}
	do()
}
