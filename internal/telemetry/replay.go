package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

const maxReplayLine = 1 << 20

var errLineTooLong = errors.New("replay line too long")

// ReplaySource plays back a JSON-lines recording of snapshots, one per read,
// restarting from the top at EOF.
type ReplaySource struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	file   *os.File
	reader *bufio.Reader
}

func NewReplaySource(path string, logger *slog.Logger) *ReplaySource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplaySource{
		path:   path,
		logger: logger.With("component", "telemetry-replay"),
	}
}

func (s *ReplaySource) Attach(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open replay: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		s.file.Close()
	}
	s.file = f
	s.reader = bufio.NewReaderSize(f, 64*1024)

	s.logger.Info("replay attached", "path", s.path)
	return nil
}

func (s *ReplaySource) ReadSnapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reader == nil {
		return Empty(), ErrNotAttached
	}
	if err := ctx.Err(); err != nil {
		return Empty(), err
	}

	line, err := s.nextLine()
	if err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(line, &snap); err != nil {
		return Empty(), fmt.Errorf("%w: decode line: %v", ErrReadFailed, err)
	}
	snap.Timestamp = time.Now()
	return snap, nil
}

func (s *ReplaySource) nextLine() ([]byte, error) {
	for attempt := 0; attempt < 2; attempt++ {
		for {
			line, err := s.readLine()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
			if len(line) > 0 {
				return line, nil
			}
		}
		if _, err := s.file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		s.reader.Reset(s.file)
	}
	return nil, io.ErrUnexpectedEOF
}

// readLine returns the next line without its terminator. A line longer than
// maxReplayLine is consumed whole and reported as errLineTooLong, leaving the
// reader at the start of the following line.
func (s *ReplaySource) readLine() ([]byte, error) {
	var line []byte
	tooLong := false
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			return nil, err
		}
		if !tooLong {
			if len(line)+len(chunk) > maxReplayLine {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return nil, errLineTooLong
	}
	return line, nil
}

func (s *ReplaySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.reader = nil
	return err
}
