package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DefaultRosterLimit = 6

// League is the durable record of one fantasy golf league: its team names,
// the drafted rosters, and the pool of draftable players. Rosters and pool
// are stored as JSON documents, matching the shape the original data files
// used, so the store stays agnostic of draft mechanics.
type League struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"not null"`
	RosterLimit int            `json:"rosterLimit" gorm:"not null;default:6"`
	TeamNames   datatypes.JSON `json:"teamNames" gorm:"type:jsonb;default:'[]'"`
	Teams       datatypes.JSON `json:"teams" gorm:"type:jsonb;default:'[]'"`
	Pool        datatypes.JSON `json:"pool" gorm:"type:jsonb;default:'[]'"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// DecodeTeamNames unmarshals the stored team name list.
func (l *League) DecodeTeamNames() ([]string, error) {
	names := []string{}
	if len(l.TeamNames) == 0 {
		return names, nil
	}
	if err := json.Unmarshal(l.TeamNames, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// DecodeTeams unmarshals the stored rosters, one per team in league order.
func (l *League) DecodeTeams() ([]Roster, error) {
	teams := []Roster{}
	if len(l.Teams) == 0 {
		return teams, nil
	}
	if err := json.Unmarshal(l.Teams, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// DecodePool unmarshals the stored player pool.
func (l *League) DecodePool() ([]Player, error) {
	pool := []Player{}
	if len(l.Pool) == 0 {
		return pool, nil
	}
	if err := json.Unmarshal(l.Pool, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// SetTeams replaces the stored rosters.
func (l *League) SetTeams(teams []Roster) error {
	data, err := json.Marshal(teams)
	if err != nil {
		return err
	}
	l.Teams = data
	return nil
}

// SetTeamNames replaces the stored team name list.
func (l *League) SetTeamNames(names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	l.TeamNames = data
	return nil
}

// SetPool replaces the stored player pool.
func (l *League) SetPool(pool []Player) error {
	data, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	l.Pool = data
	return nil
}
