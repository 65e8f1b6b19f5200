package game

import (
	"fmt"

	"quizboard-service/internal/domain"
)

// DefaultTeams is the roster size a fresh session starts with.
const DefaultTeams = 4

// Roster is the ordered scoreboard of a session. Every mutation swaps in a new
// slice, so slices handed out earlier are never modified.
type Roster struct {
	teams []domain.Team
	// highest id ever handed out; ids are not reused after removal
	lastID int
}

// NewRoster creates teams 1..n with default names.
func NewRoster(n int) *Roster {
	r := &Roster{}
	for i := 0; i < n; i++ {
		r.Add()
	}
	return r
}

// Add appends a team with the next id and a default name.
func (r *Roster) Add() domain.Team {
	id := r.lastID
	for _, t := range r.teams {
		if t.ID > id {
			id = t.ID
		}
	}
	id++
	r.lastID = id

	team := domain.Team{ID: id, Name: fmt.Sprintf("Team %d", id)}
	next := make([]domain.Team, 0, len(r.teams)+1)
	next = append(next, r.teams...)
	r.teams = append(next, team)
	return team
}

// Remove drops the team with id. The last remaining team cannot be removed;
// that case, like an unknown id, is a no-op reported as false.
func (r *Roster) Remove(id int) bool {
	if len(r.teams) <= 1 || r.index(id) < 0 {
		return false
	}
	next := make([]domain.Team, 0, len(r.teams)-1)
	for _, t := range r.teams {
		if t.ID != id {
			next = append(next, t)
		}
	}
	r.teams = next
	return true
}

// Rename sets the display name. Empty names are allowed.
func (r *Roster) Rename(id int, name string) bool {
	return r.update(id, func(t *domain.Team) { t.Name = name })
}

// AdjustScore adds delta to the team's score.
func (r *Roster) AdjustScore(id int, delta int) (domain.Team, bool) {
	ok := r.update(id, func(t *domain.Team) { t.Score += delta })
	if !ok {
		return domain.Team{}, false
	}
	return r.teams[r.index(id)], true
}

// Teams returns a copy of the roster in display order.
func (r *Roster) Teams() []domain.Team {
	out := make([]domain.Team, len(r.teams))
	copy(out, r.teams)
	return out
}

func (r *Roster) Len() int {
	return len(r.teams)
}

func (r *Roster) update(id int, fn func(*domain.Team)) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	next := make([]domain.Team, len(r.teams))
	copy(next, r.teams)
	fn(&next[i])
	r.teams = next
	return true
}

func (r *Roster) index(id int) int {
	for i, t := range r.teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}
