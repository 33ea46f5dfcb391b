package xcheck

import "io"

// Option configures a Checker. Each With* constructor returns a small,
// unexported option type tagged with a marker method, following the
// teacher's functional-options catalogue (config.go's SimulatorOption /
// RunOptions pattern).
type Option interface{ apply(*config) }

type config struct {
	checkSafety   bool
	checkDeadlock bool
	checkMay      bool
	checkMust     bool

	symmetry bool
	stubborn bool

	forwardOrder bool

	excludeTerminalsFromMay  bool
	excludeTerminalsFromMust bool

	progressEvery int // 0 means no ticker
	stopCount     int
	hashBits      int
	noSanityCheck bool
	noProgressChk bool
	onlyTypical   bool
	sizeParam     int

	out io.Writer
}

func defaultConfig() config {
	return config{
		hashBits:     23,
		forwardOrder: false,
		out:          nil, // filled with os.Stdout by the caller
	}
}

type optFunc func(*config)

func (f optFunc) apply(c *config) { f(c) }

// WithSafety enables check_state verification at every newly discovered
// state.
func WithSafety() Option { return optFunc(func(c *config) { c.checkSafety = true }) }

// WithDeadlockCheck enables check_deadlock verification at terminal states.
func WithDeadlockCheck() Option { return optFunc(func(c *config) { c.checkDeadlock = true }) }

// WithMayProgress enables the may-progress verifier round.
func WithMayProgress() Option { return optFunc(func(c *config) { c.checkMay = true }) }

// WithMustProgress enables the must-progress verifier round.
func WithMustProgress() Option { return optFunc(func(c *config) { c.checkMust = true }) }

// WithSymmetry enables the model's symmetry canonicalizer after every
// successful firing.
func WithSymmetry() Option { return optFunc(func(c *config) { c.symmetry = true }) }

// WithStubbornSets enables stubborn-set reduction via the model's
// NextStubborn obligation graph.
func WithStubbornSets() Option { return optFunc(func(c *config) { c.stubborn = true }) }

// WithForwardOrder tries transitions in ascending index order instead of
// the default descending order.
func WithForwardOrder() Option { return optFunc(func(c *config) { c.forwardOrder = true }) }

// WithTerminalsExcludedFromMay makes terminal states NOT trivially satisfy
// may-progress (dl_not_may).
func WithTerminalsExcludedFromMay() Option {
	return optFunc(func(c *config) { c.excludeTerminalsFromMay = true })
}

// WithTerminalsExcludedFromMust makes terminal states NOT trivially satisfy
// must-progress (dl_not_must).
func WithTerminalsExcludedFromMust() Option {
	return optFunc(func(c *config) { c.excludeTerminalsFromMust = true })
}

// WithProgressReporting emits a progress line every n explored states.
func WithProgressReporting(n int) Option {
	return optFunc(func(c *config) { c.progressEvery = n })
}

// WithNoProgressReporting suppresses the progress ticker entirely (the
// default).
func WithNoProgressReporting() Option {
	return optFunc(func(c *config) { c.progressEvery = 0 })
}

// WithStopCount aborts exploration once the node count would exceed n.
func WithStopCount(n int) Option { return optFunc(func(c *config) { c.stopCount = n }) }

// WithHashBits sets log2 of the hash table's bucket count (default 23).
func WithHashBits(n int) Option { return optFunc(func(c *config) { c.hashBits = n }) }

// WithNoSanityCheck omits value-range checks on variable writes.
func WithNoSanityCheck() Option { return optFunc(func(c *config) { c.noSanityCheck = true }) }

// WithNoProgressVerification skips all progress rounds and the back-edge
// construction pass they depend on.
func WithNoProgressVerification() Option {
	return optFunc(func(c *config) { c.noProgressChk = true })
}

// WithOnlyTypical produces a single typical execution trace from the
// initial state, skipping full verification.
func WithOnlyTypical() Option { return optFunc(func(c *config) { c.onlyTypical = true }) }

// WithSizeParameter surfaces an informational numeric parameter in the run
// summary.
func WithSizeParameter(n int) Option { return optFunc(func(c *config) { c.sizeParam = n }) }

// WithOutput redirects progress/summary output away from os.Stdout.
func WithOutput(w io.Writer) Option { return optFunc(func(c *config) { c.out = w }) }
