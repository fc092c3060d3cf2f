package episode

import "errors"

// Domain errors for episode store operations.
var (
	// ErrEpisodeNotFound is returned when an episode does not exist.
	ErrEpisodeNotFound = errors.New("episode not found")

	// ErrEpisodeExists is returned when saving an episode whose ID is taken.
	ErrEpisodeExists = errors.New("episode already exists")

	// ErrInvalidEpisode is returned when an episode is malformed.
	ErrInvalidEpisode = errors.New("invalid episode")
)
