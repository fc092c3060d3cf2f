package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/reflex-go/domain/episode"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for reflex runtime logging.

// EpisodeID adds an episode ID field.
func EpisodeID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("episode_id", id)
	}
}

// World adds a world name field.
func World(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("world", name)
	}
}

// Step adds a step index field.
func Step(index int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("step", index)
	}
}

// Status adds an episode status field.
func Status(s episode.Status) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("status", string(s))
	}
}

// Action adds the selected action field.
func Action(action string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("action", action)
	}
}

// Matched adds a rule-matched field.
func Matched(matched bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("matched", matched)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// DurationNs adds a duration field in nanoseconds.
func DurationNs(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ns", d.Nanoseconds())
	}
}

// Steps adds a step count field.
func Steps(count int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("steps", count)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Path adds a file path field.
func Path(path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("path", path)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
