package audio

import "errors"

var (
	// ErrPermissionDenied reports that the capture device could not be acquired.
	ErrPermissionDenied = errors.New("audio: capture permission denied")
	// ErrAudioUnavailable reports that no audio output could be acquired.
	ErrAudioUnavailable = errors.New("audio: output unavailable")
	// ErrClosed is returned when reading from a closed source.
	ErrClosed = errors.New("audio: source closed")
)
