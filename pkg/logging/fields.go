package logging

import "log/slog"

// Domain identifiers

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func FriendID(id string) slog.Attr {
	return slog.String("friend_id", id)
}

func RoomID(id string) slog.Attr {
	return slog.String("room_id", id)
}

func ReceiverID(id string) slog.Attr {
	return slog.String("receiver_id", id)
}

// Event bus

func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Error handling

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
