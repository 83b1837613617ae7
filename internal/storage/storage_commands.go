package storage

import "time"

type CommandHistoryRecord struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// AppendCommandToHistory appends a record and keeps the newest commandHistoryLimit entries.
func (s *Storage) AppendCommandToHistory(guildID string, record CommandHistoryRecord) error {
	history, err := s.FetchCommandHistory(guildID)
	if err != nil {
		return err
	}

	history = append(history, record)
	if len(history) > commandHistoryLimit {
		history = history[len(history)-commandHistoryLimit:]
	}

	s.ds.Add(guildID+suffixHistory, history)
	return nil
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	data, exists := s.ds.Get(guildID + suffixHistory)
	if !exists || data == nil {
		return []CommandHistoryRecord{}, nil
	}

	if history, ok := data.([]CommandHistoryRecord); ok {
		return append([]CommandHistoryRecord(nil), history...), nil
	}

	var history []CommandHistoryRecord
	if err := decode(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}
