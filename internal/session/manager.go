package session

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/billie-coop/murmur/internal/chat"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const defaultTitle = "New Chat"

var sessionsBucket = []byte("sessions")

// ErrNoSession is returned when a lookup finds no session.
var ErrNoSession = errors.New("session not found")

// Session is a saved conversation's metadata.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Created     time.Time `json:"created"`
	LastUpdated time.Time `json:"last_updated"`
}

// Manager persists sessions and their transcripts in a bbolt file. Session
// metadata lives in the "sessions" bucket; each session's messages live in
// their own bucket keyed by insertion sequence.
type Manager struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (or creates) the session database at path.
func Open(path string) (*Manager, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session db: %w", err)
	}

	return &Manager{db: db, now: time.Now}, nil
}

// Close releases the database file lock.
func (m *Manager) Close() error {
	return m.db.Close()
}

func messageBucketName(id string) []byte {
	return []byte("session-" + id)
}

// NewSession creates an empty session.
func (m *Manager) NewSession() (Session, error) {
	now := m.now()
	s := Session{
		ID:          uuid.NewString(),
		Title:       defaultTitle,
		Created:     now,
		LastUpdated: now,
	}

	err := m.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucket(messageBucketName(s.ID)); err != nil {
			return fmt.Errorf("failed to create message bucket: %w", err)
		}
		return putSession(tx, s)
	})
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// List returns all sessions, most recently updated first.
func (m *Manager) List() ([]Session, error) {
	var sessions []Session
	err := m.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(_, v []byte) error {
			var s Session
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}
			sessions = append(sessions, s)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastUpdated.After(sessions[j].LastUpdated)
	})
	return sessions, nil
}

// Latest returns the most recently updated session, or ErrNoSession.
func (m *Manager) Latest() (Session, error) {
	sessions, err := m.List()
	if err != nil {
		return Session{}, err
	}
	if len(sessions) == 0 {
		return Session{}, ErrNoSession
	}
	return sessions[0], nil
}

// AppendMessages adds msgs to the end of a session's transcript. The first
// user message also names the session.
func (m *Manager) AppendMessages(id string, msgs ...chat.Message) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		s, err := getSession(tx, id)
		if err != nil {
			return err
		}
		b := tx.Bucket(messageBucketName(id))
		if b == nil {
			return fmt.Errorf("%w: %s has no transcript", ErrNoSession, id)
		}

		for _, msg := range msgs {
			seq, err := b.NextSequence()
			if err != nil {
				return fmt.Errorf("failed to get next sequence: %w", err)
			}
			v, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("failed to marshal message: %w", err)
			}
			if err := b.Put(seqKey(seq), v); err != nil {
				return err
			}

			if s.Title == defaultTitle && msg.Role == chat.RoleUser {
				s.Title = generateTitle(msg.Content)
			}
		}

		s.LastUpdated = m.now()
		return putSession(tx, s)
	})
}

// Messages returns a session's transcript in insertion order.
func (m *Manager) Messages(id string) ([]chat.Message, error) {
	var msgs []chat.Message
	err := m.db.View(func(tx *bolt.Tx) error {
		if _, err := getSession(tx, id); err != nil {
			return err
		}
		b := tx.Bucket(messageBucketName(id))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var msg chat.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal message: %w", err)
			}
			msgs = append(msgs, msg)
			return nil
		})
	})
	return msgs, err
}

// Clear empties a session's transcript and resets its title.
func (m *Manager) Clear(id string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		s, err := getSession(tx, id)
		if err != nil {
			return err
		}
		name := messageBucketName(id)
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to delete message bucket: %w", err)
		}
		if _, err := tx.CreateBucket(name); err != nil {
			return fmt.Errorf("failed to create message bucket: %w", err)
		}

		s.Title = defaultTitle
		s.LastUpdated = m.now()
		return putSession(tx, s)
	})
}

func getSession(tx *bolt.Tx, id string) (Session, error) {
	v := tx.Bucket(sessionsBucket).Get([]byte(id))
	if v == nil {
		return Session{}, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	var s Session
	if err := json.Unmarshal(v, &s); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return s, nil
}

func putSession(tx *bolt.Tx, s Session) error {
	v, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return tx.Bucket(sessionsBucket).Put([]byte(s.ID), v)
}

// seqKey encodes seq big-endian so ForEach walks messages in order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func generateTitle(firstMessage string) string {
	title := strings.Join(strings.Fields(firstMessage), " ")
	if utf8.RuneCountInString(title) > 50 {
		runes := []rune(title)
		title = string(runes[:47]) + "..."
	}
	return title
}
