package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) *SQLiteLibrary {
	return newTestLibraryOwned(t, t.TempDir(), "user-1")
}

func newTestLibraryOwned(t *testing.T, root, owner string) *SQLiteLibrary {
	t.Helper()
	lib, err := NewSQLiteLibrary(root, owner)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestSQLiteLibrarySavedItems(t *testing.T) {
	lib := newTestLibrary(t)

	first := &SavedItem{Type: ItemLesson, Title: "درس المحبة", Payload: []byte(`{"a":1}`), CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, lib.SaveItem(first))
	require.NotEmpty(t, first.ID, "SaveItem must assign an id")

	second := &SavedItem{Type: ItemLesson, Title: "درس الصلاة", Payload: []byte(`{"b":2}`)}
	require.NoError(t, lib.SaveItem(second))
	other := &SavedItem{Type: ItemGames, Title: "ألعاب الرحلة", Payload: []byte(`[]`)}
	require.NoError(t, lib.SaveItem(other))

	lessons, err := lib.ListItems(ItemLesson)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	require.Equal(t, "درس الصلاة", lessons[0].Title, "listing must be newest first")

	all, err := lib.ListItems("")
	require.NoError(t, err)
	require.Len(t, all, 3)

	got, err := lib.GetItem(first.ID)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), got.Payload)

	require.NoError(t, lib.DeleteItem(first.ID))
	_, err = lib.GetItem(first.ID)
	require.Error(t, err)

	require.Error(t, lib.SaveItem(&SavedItem{Type: ItemLesson, Payload: []byte(`{}`)}), "untitled items are rejected")
}

func TestSQLiteLibraryChatSessions(t *testing.T) {
	lib := newTestLibrary(t)

	sess := &ChatSession{
		Surface: SurfacePatristic,
		Title:   "عن الصلاة",
		Messages: []ChatMessage{
			{Role: RoleUser, Content: "ماذا قال الآباء عن الصلاة؟"},
			{Role: RoleModel, Content: "قال القديس..."},
		},
	}
	require.NoError(t, lib.SaveChatSession(sess))
	require.NotEmpty(t, sess.ID)

	loaded, err := lib.LoadChatSession(sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.Messages, loaded.Messages)
	require.Equal(t, "عن الصلاة", loaded.Title)

	// updating the same id replaces the transcript
	sess.Messages = append(sess.Messages, ChatMessage{Role: RoleUser, Content: "تكملة"})
	require.NoError(t, lib.SaveChatSession(sess))
	loaded, err = lib.LoadChatSession(sess.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 3)

	otherSurface := &ChatSession{Surface: SurfaceLesson, Messages: []ChatMessage{{Role: RoleUser, Content: "س"}}}
	require.NoError(t, lib.SaveChatSession(otherSurface))

	sums, err := lib.ListChatSessions(SurfacePatristic)
	require.NoError(t, err)
	require.Len(t, sums, 1, "listing must be scoped to the surface")
	require.Equal(t, 3, sums[0].MessageCount)

	require.NoError(t, lib.DeleteChatSession(sess.ID))
	_, err = lib.LoadChatSession(sess.ID)
	require.Error(t, err)
}

func TestSQLiteLibraryChatSessionOrdering(t *testing.T) {
	lib := newTestLibrary(t)
	a := &ChatSession{Surface: SurfacePatristic, Title: "أ", Messages: []ChatMessage{{Role: RoleUser, Content: "س"}}}
	require.NoError(t, lib.SaveChatSession(a))
	time.Sleep(2 * time.Millisecond)
	b := &ChatSession{Surface: SurfacePatristic, Title: "ب", Messages: []ChatMessage{{Role: RoleUser, Content: "س"}}}
	require.NoError(t, lib.SaveChatSession(b))

	sums, err := lib.ListChatSessions(SurfacePatristic)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	require.Equal(t, "ب", sums[0].Title, "newest session first")

	// touching the older session moves it to the top
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, lib.SaveChatSession(a))
	sums, err = lib.ListChatSessions(SurfacePatristic)
	require.NoError(t, err)
	require.Equal(t, "أ", sums[0].Title)
}

func TestSQLiteLibraryScopesRowsToOwner(t *testing.T) {
	root := t.TempDir()
	mina := newTestLibraryOwned(t, root, "mina")
	sara := newTestLibraryOwned(t, root, "sara")

	item := &SavedItem{Type: ItemLesson, Title: "درس المحبة", Payload: []byte(`{}`)}
	require.NoError(t, mina.SaveItem(item))
	sess := &ChatSession{Surface: SurfacePatristic, Title: "عن الصلاة", Messages: []ChatMessage{{Role: RoleUser, Content: "س"}}}
	require.NoError(t, mina.SaveChatSession(sess))

	// the other profile sees none of it
	items, err := sara.ListItems("")
	require.NoError(t, err)
	require.Empty(t, items)
	_, err = sara.GetItem(item.ID)
	require.Error(t, err)

	sums, err := sara.ListChatSessions(SurfacePatristic)
	require.NoError(t, err)
	require.Empty(t, sums)
	_, err = sara.LoadChatSession(sess.ID)
	require.Error(t, err)

	// a cross-profile delete is a no-op
	require.NoError(t, sara.DeleteItem(item.ID))

	// the owner still sees everything
	got, err := mina.GetItem(item.ID)
	require.NoError(t, err)
	require.Equal(t, "mina", got.UserID)
	loaded, err := mina.LoadChatSession(sess.ID)
	require.NoError(t, err)
	require.Equal(t, "mina", loaded.UserID)
}

func TestSQLiteLibraryRequiresSignIn(t *testing.T) {
	lib := newTestLibraryOwned(t, t.TempDir(), "")

	err := lib.SaveItem(&SavedItem{Type: ItemLesson, Title: "درس", Payload: []byte(`{}`)})
	require.ErrorIs(t, err, ErrNotSignedIn)
	err = lib.SaveChatSession(&ChatSession{Surface: SurfacePatristic, Messages: []ChatMessage{{Role: RoleUser, Content: "س"}}})
	require.ErrorIs(t, err, ErrNotSignedIn)

	// reads stay usable, they just come back empty
	items, err := lib.ListItems("")
	require.NoError(t, err)
	require.Empty(t, items)

	// the reading bookmark is device-wide, not per profile
	require.NoError(t, lib.SaveReadingPosition(BibleReadingPosition{BookID: "john", Chapter: 3}))
}

func TestSQLiteLibraryReadingPosition(t *testing.T) {
	lib := newTestLibrary(t)

	_, ok, err := lib.LoadReadingPosition()
	require.NoError(t, err)
	require.False(t, ok, "fresh library has no bookmark")

	require.NoError(t, lib.SaveReadingPosition(BibleReadingPosition{BookID: "john", Chapter: 3}))
	pos, ok, err := lib.LoadReadingPosition()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, BibleReadingPosition{BookID: "john", Chapter: 3}, pos)

	// the bookmark is a single slot
	require.NoError(t, lib.SaveReadingPosition(BibleReadingPosition{BookID: "psalms", Chapter: 23}))
	pos, ok, err = lib.LoadReadingPosition()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "psalms", pos.BookID)

	require.Error(t, lib.SaveReadingPosition(BibleReadingPosition{BookID: "", Chapter: 1}))
	require.Error(t, lib.SaveReadingPosition(BibleReadingPosition{BookID: "john", Chapter: 0}))
}
