package storeregistry

// Usage is a bit set naming the kinds of program a backend may serve.
type Usage uint8

const (
	// UsageLibrary backends are opened in-process by weighting jobs.
	UsageLibrary Usage = 1 << iota
	// UsageDaemon backends can sit behind a shared table server.
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }
