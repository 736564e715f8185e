// Package session tracks server-side proof of authentication. A Session
// ties one opaque token to one teacher id; the token is the only thing
// that ever leaves the server (inside an HTTP-only cookie).
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	Token     string
	TeacherID string
	ExpiresAt time.Time // UTC
}

func (s Session) Expired() bool { return time.Now().UTC().After(s.ExpiresAt) }

// Store is the server-side session registry. An expired session behaves
// exactly like an absent one.
type Store interface {
	New(teacherID string) (Session, error)
	Get(token string) (Session, error)
	Delete(token string)
	// DeleteByTeacher destroys every session of a teacher; used when the
	// account itself is deleted.
	DeleteByTeacher(teacherID string)
}

// memoryStore keeps sessions in process memory. This is the only
// cross-request shared state in the whole app; a mutex suffices since
// each request does one read or one write.
type memoryStore struct {
	mutex    sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
}

var _ Store = (*memoryStore)(nil)

func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}
}

func (st *memoryStore) New(teacherID string) (Session, error) {
	sess := Session{
		Token:     uuid.NewString(),
		TeacherID: teacherID,
		ExpiresAt: time.Now().UTC().Add(st.ttl),
	}

	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.sweep()
	st.sessions[sess.Token] = sess
	return sess, nil
}

func (st *memoryStore) Get(token string) (Session, error) {
	st.mutex.RLock()
	sess, ok := st.sessions[token]
	st.mutex.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}
	if sess.Expired() {
		st.Delete(token)
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (st *memoryStore) Delete(token string) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	delete(st.sessions, token)
}

func (st *memoryStore) DeleteByTeacher(teacherID string) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	for token, sess := range st.sessions {
		if sess.TeacherID == teacherID {
			delete(st.sessions, token)
		}
	}
}

// sweep drops expired sessions; caller must hold the write lock.
func (st *memoryStore) sweep() {
	for token, sess := range st.sessions {
		if sess.Expired() {
			delete(st.sessions, token)
		}
	}
}
