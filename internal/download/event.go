// Package download implements a single streaming transfer: temp-file
// staging, chunked writes, coalesced progress reporting and an atomic
// rename that publishes the finished file.
package download

// Kind discriminates the events a transfer emits.
type Kind int

const (
	KindStarting Kind = iota
	KindProgress
	KindFinished
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindStarting:
		return "starting"
	case KindProgress:
		return "progress"
	case KindFinished:
		return "finished"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Event is one progress report from a running transfer. The sequence for
// a transfer is Starting, zero or more Progress reports with
// non-decreasing Downloaded, and exactly one of Finished or Error.
type Event struct {
	Kind       Kind
	Downloaded int64
	Total      int64 // <= 0 while the remote has not reported a length
	Err        string
}

// Terminal reports whether no further events follow this one.
func (e Event) Terminal() bool {
	return e.Kind == KindFinished || e.Kind == KindError
}

func Starting() Event {
	return Event{Kind: KindStarting}
}

func Progress(downloaded, total int64) Event {
	return Event{Kind: KindProgress, Downloaded: downloaded, Total: total}
}

func Finished() Event {
	return Event{Kind: KindFinished}
}

func Failure(msg string) Event {
	return Event{Kind: KindError, Err: msg}
}
