package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	sess, err := store.New("t1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "t1", sess.TeacherID)

	got, err := store.Get(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = store.Get("no-such-token")
	assert.Equal(t, ErrNotFound, err)

	store.Delete(sess.Token)
	_, err = store.Get(sess.Token)
	assert.Equal(t, ErrNotFound, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(-time.Second) // already expired on creation

	sess, err := store.New("t1")
	require.NoError(t, err)

	_, err = store.Get(sess.Token)
	assert.Equal(t, ErrNotFound, err)
}

func TestMemoryStoreDeleteByTeacher(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	s1, _ := store.New("t1")
	s2, _ := store.New("t1")
	s3, _ := store.New("t2")

	store.DeleteByTeacher("t1")

	_, err := store.Get(s1.Token)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.Get(s2.Token)
	assert.Equal(t, ErrNotFound, err)
	_, err = store.Get(s3.Token)
	assert.NoError(t, err)
}
