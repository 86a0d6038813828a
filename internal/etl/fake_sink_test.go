// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/models"
)

// fakeStore is an in-memory Store. Rows written in a session become visible
// in the store only on Commit.
type fakeStore struct {
	mu sync.Mutex

	songs     map[string]models.SongRecord
	artists   map[string]models.ArtistRecord
	times     []models.TimeRecord
	users     map[string]models.UserRecord
	songplays []models.SongplayRecord

	// failures
	beginErr   error
	commitErr  map[string]error // by file, taken from the context
	tableErr   map[models.Table]error
	lookupErr  error
	sessionLog []string // committed or rolled back, in order
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		songs:     make(map[string]models.SongRecord),
		artists:   make(map[string]models.ArtistRecord),
		users:     make(map[string]models.UserRecord),
		commitErr: make(map[string]error),
		tableErr:  make(map[models.Table]error),
	}
}

func (s *fakeStore) Begin(_ context.Context) (Session, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &fakeSession{store: s}, nil
}

func (s *fakeStore) songplayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.songplays)
}

type fakeSession struct {
	store *fakeStore
	done  bool

	songs     []models.SongRecord
	artists   []models.ArtistRecord
	times     []models.TimeRecord
	users     []models.UserRecord
	songplays []models.SongplayRecord
}

var errSessionDone = errors.New("session finished")

func (f *fakeSession) fail(table models.Table) error {
	if f.done {
		return errSessionDone
	}
	return f.store.tableErr[table]
}

func (f *fakeSession) InsertSong(_ context.Context, s *models.SongRecord) error {
	if err := f.fail(models.TableSongs); err != nil {
		return err
	}
	f.songs = append(f.songs, *s)
	return nil
}

func (f *fakeSession) InsertArtist(_ context.Context, a *models.ArtistRecord) error {
	if err := f.fail(models.TableArtists); err != nil {
		return err
	}
	f.artists = append(f.artists, *a)
	return nil
}

func (f *fakeSession) InsertTime(_ context.Context, t *models.TimeRecord) error {
	if err := f.fail(models.TableTime); err != nil {
		return err
	}
	f.times = append(f.times, *t)
	return nil
}

func (f *fakeSession) UpsertUser(_ context.Context, u *models.UserRecord) error {
	if err := f.fail(models.TableUsers); err != nil {
		return err
	}
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeSession) InsertSongplay(_ context.Context, p *models.SongplayRecord) error {
	if err := f.fail(models.TableSongplays); err != nil {
		return err
	}
	f.songplays = append(f.songplays, *p)
	return nil
}

// LookupSongArtist sees committed rows plus rows written earlier in this session.
func (f *fakeSession) LookupSongArtist(_ context.Context, title, artist string, duration float64) (*models.SongArtistMatch, error) {
	if f.store.lookupErr != nil {
		return nil, f.store.lookupErr
	}

	f.store.mu.Lock()
	songs := make([]models.SongRecord, 0, len(f.store.songs)+len(f.songs))
	for _, s := range f.store.songs {
		songs = append(songs, s)
	}
	artists := make(map[string]models.ArtistRecord, len(f.store.artists))
	for id, a := range f.store.artists {
		artists[id] = a
	}
	f.store.mu.Unlock()

	songs = append(songs, f.songs...)
	for _, a := range f.artists {
		artists[a.ArtistID] = a
	}

	var matches []models.SongArtistMatch
	for _, s := range songs {
		a, ok := artists[s.ArtistID]
		if ok && s.Title == title && a.Name == artist && s.Duration == duration {
			matches = append(matches, models.SongArtistMatch{SongID: s.SongID, ArtistID: s.ArtistID})
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SongID != matches[j].SongID {
			return matches[i].SongID < matches[j].SongID
		}
		return matches[i].ArtistID < matches[j].ArtistID
	})
	return &matches[0], nil
}

func (f *fakeSession) Commit(ctx context.Context) error {
	if f.done {
		return errSessionDone
	}
	f.done = true

	path := logging.FileFromContext(ctx)
	if err := f.store.commitErr[path]; err != nil {
		f.store.mu.Lock()
		f.store.sessionLog = append(f.store.sessionLog, "commit failed "+path)
		f.store.mu.Unlock()
		return err
	}

	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, song := range f.songs {
		if _, exists := s.songs[song.SongID]; !exists {
			s.songs[song.SongID] = song
		}
	}
	for _, a := range f.artists {
		if _, exists := s.artists[a.ArtistID]; !exists {
			s.artists[a.ArtistID] = a
		}
	}
	s.times = append(s.times, f.times...)
	for _, u := range f.users {
		if existing, ok := s.users[u.UserID]; ok {
			existing.Level = u.Level
			s.users[u.UserID] = existing
			continue
		}
		s.users[u.UserID] = u
	}
	s.songplays = append(s.songplays, f.songplays...)
	s.sessionLog = append(s.sessionLog, "commit "+path)
	return nil
}

func (f *fakeSession) Rollback(ctx context.Context) error {
	if f.done {
		return nil
	}
	f.done = true
	f.store.mu.Lock()
	f.store.sessionLog = append(f.store.sessionLog, "rollback "+logging.FileFromContext(ctx))
	f.store.mu.Unlock()
	return nil
}
