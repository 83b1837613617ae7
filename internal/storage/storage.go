// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/keshon/datastore"
)

// Key suffixes for per-guild values. The bare guild id holds the default artist.
const (
	suffixDJ      = "_dj"
	suffixPrefix  = "_prefix"
	suffixHistory = "_history"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Flush writes pending changes to disk immediately.
func (s *Storage) Flush() error {
	return s.ds.SaveToFile()
}

// DefaultArtist returns the artist used by play without arguments, or "" if unset.
func (s *Storage) DefaultArtist(guildID string) (string, error) {
	return s.getString(guildID)
}

func (s *Storage) SetDefaultArtist(guildID, artist string) error {
	return s.setString(guildID, artist)
}

// DJRole returns the configured DJ role id, or "" if unset.
func (s *Storage) DJRole(guildID string) (string, error) {
	return s.getString(guildID + suffixDJ)
}

func (s *Storage) SetDJRole(guildID, roleID string) error {
	return s.setString(guildID+suffixDJ, roleID)
}

// Prefix returns the configured command prefix, or "" if unset.
func (s *Storage) Prefix(guildID string) (string, error) {
	return s.getString(guildID + suffixPrefix)
}

func (s *Storage) SetPrefix(guildID, prefix string) error {
	return s.setString(guildID+suffixPrefix, prefix)
}

func (s *Storage) getString(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	data, exists := s.ds.Get(key)
	if !exists || data == nil {
		return "", nil
	}
	value, ok := data.(string)
	if !ok {
		return "", fmt.Errorf("value for %q is %T, not a string", key, data)
	}
	return value, nil
}

func (s *Storage) setString(key, value string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if value == "" {
		s.ds.Delete(key)
		return nil
	}
	s.ds.Add(key, value)
	return nil
}

// decode converts a loosely typed datastore value (maps and slices after a
// reload from disk) into out.
func decode(data any, out any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshalling data: %w", err)
	}
	if err := json.Unmarshal(jsonData, out); err != nil {
		return fmt.Errorf("error unmarshalling to %T: %w", out, err)
	}
	return nil
}
