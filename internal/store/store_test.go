package store

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"voiceforge/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDB записывает запросы и отдает заранее подготовленные строки
type fakeDB struct {
	queries []string
	args    [][]any

	row     *fakeRow
	rows    *fakeRows
	tag     pgconn.CommandTag
	execErr error
}

func (f *fakeDB) record(sql string, args []any) {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	return f.tag, f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	return f.row
}

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	pgx.Rows
	data   [][]any
	pos    int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.data[r.pos-1]) }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 { r.closed = true }

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return errors.New("число колонок не совпадает")
	}
	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(values[i]))
	}
	return nil
}

func characterRow(slug string, created time.Time) []any {
	return []any{
		slug, "Captain Nova", "Space pilot", "hero",
		[]byte(`["brave","witty"]`),
		[]byte(`{"speed":1.1}`),
		[]byte(`{"speaking_style":"Crisp","typical_phrases":["Engage!"],"background":"Born in orbit"}`),
		created,
	}
}

func TestCharacterRepositoryCreate(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	db := &fakeDB{row: &fakeRow{values: []any{created}}}
	repo := NewCharacterRepository(db, zap.NewNop())

	c := &models.Character{
		ID:            "captain_nova",
		Name:          "Captain Nova",
		SpeakingStyle: "Crisp",
	}
	require.NoError(t, repo.Create(context.Background(), c))

	assert.Equal(t, created, c.CreatedAt)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "ON CONFLICT (slug)")
	assert.Equal(t, "captain_nova", db.args[0][0])
	assert.JSONEq(t, `[]`, string(db.args[0][4].([]byte)), "nil черты сохраняются пустым массивом")
	assert.JSONEq(t, `{"speaking_style":"Crisp"}`, string(db.args[0][6].([]byte)))
}

func TestCharacterRepositoryGetBySlug(t *testing.T) {
	created := time.Now()
	db := &fakeDB{row: &fakeRow{values: characterRow("captain_nova", created)}}
	repo := NewCharacterRepository(db, zap.NewNop())

	c, err := repo.GetBySlug(context.Background(), "captain_nova")
	require.NoError(t, err)

	assert.Equal(t, "captain_nova", c.ID)
	assert.Equal(t, []string{"brave", "witty"}, c.PersonalityTraits)
	assert.Equal(t, 1.1, c.VoiceSettings["speed"])
	assert.Equal(t, "Crisp", c.SpeakingStyle)
	assert.Equal(t, []string{"Engage!"}, c.TypicalPhrases)
	assert.Equal(t, "Born in orbit", c.Background)
	assert.Equal(t, []any{"captain_nova"}, db.args[0])
}

func TestCharacterRepositoryNotFound(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: pgx.ErrNoRows}}
	repo := NewCharacterRepository(db, zap.NewNop())

	_, err := repo.GetBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	db.row = &fakeRow{err: errors.New("connection reset")}
	_, err = repo.GetBySlug(context.Background(), "ghost")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCharacterNotFound)
}

func TestCharacterRepositoryList(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		characterRow("a", time.Now()),
		characterRow("b", time.Now()),
	}}
	db := &fakeDB{rows: rows}
	repo := NewCharacterRepository(db, zap.NewNop())

	list, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.True(t, rows.closed, "rows должны закрываться")
	assert.Contains(t, db.queries[0], "ORDER BY created_at ASC")
}

func sessionRow(id int64, sessionID string) []any {
	url := "http://localhost:8000/static/audio/hero_happy_abc.wav"
	return []any{id, sessionID, "hero", "I am so happy!", "happy", 0.9, &url, 1.5, time.Now()}
}

func TestSessionRepositoryCreate(t *testing.T) {
	created := time.Now()
	db := &fakeDB{row: &fakeRow{values: []any{int64(42), created}}}
	repo := NewSessionRepository(db, zap.NewNop())

	s := &models.VoiceSession{SessionID: "s-1", CharacterID: "hero", Text: "hi", Emotion: "neutral"}
	require.NoError(t, repo.Create(context.Background(), s))

	assert.Equal(t, int64(42), s.ID)
	assert.Equal(t, created, s.CreatedAt)
	assert.True(t, strings.Contains(db.queries[0], "INSERT INTO voice_sessions"))
	assert.Len(t, db.args[0], 7)
}

func TestSessionRepositoryGetBySessionID(t *testing.T) {
	db := &fakeDB{row: &fakeRow{values: sessionRow(7, "s-7")}}
	repo := NewSessionRepository(db, zap.NewNop())

	s, err := repo.GetBySessionID(context.Background(), "s-7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.ID)
	require.NotNil(t, s.AudioURL)
	assert.Contains(t, *s.AudioURL, "hero_happy_abc.wav")

	db.row = &fakeRow{err: pgx.ErrNoRows}
	_, err = repo.GetBySessionID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepositoryListRecentLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"значение по умолчанию", 0, DefaultSessionsLimit},
		{"отрицательный лимит", -5, DefaultSessionsLimit},
		{"обычный лимит", 5, 5},
		{"слишком большой лимит", 1000, MaxSessionsLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{rows: &fakeRows{data: [][]any{sessionRow(1, "a"), sessionRow(2, "b")}}}
			repo := NewSessionRepository(db, zap.NewNop())

			sessions, err := repo.ListRecent(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Len(t, sessions, 2)
			assert.Equal(t, []any{tt.want}, db.args[0])
		})
	}
}

func TestSessionRepositoryRetention(t *testing.T) {
	cutoff := time.Now().AddDate(0, 0, -30)
	db := &fakeDB{
		row: &fakeRow{values: []any{int64(3)}},
		tag: pgconn.NewCommandTag("DELETE 3"),
	}
	repo := NewSessionRepository(db, zap.NewNop())

	count, err := repo.CountOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, []any{cutoff}, db.args[1])

	db.execErr = errors.New("db down")
	_, err = repo.DeleteOlderThan(context.Background(), cutoff)
	assert.Error(t, err)
}
