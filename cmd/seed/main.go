// Command seed creates demo accounts and a week of courses in MySQL and
// prints a short-lived access token for each account.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/danceclub-booking/internal/config"
	"github.com/iliyamo/danceclub-booking/internal/database"
	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/repository"
	"github.com/iliyamo/danceclub-booking/internal/schedule"
	"github.com/iliyamo/danceclub-booking/internal/service"
	"github.com/iliyamo/danceclub-booking/internal/utils"
)

type account struct {
	username, name, password string
	role                     model.Role
	danceType                string
}

var accounts = []account{
	{"admin", "Club Admin", "admin123", model.RoleAdmin, ""},
	{"leader1", "Breaking Leader", "leader123", model.RoleLeader, "breaking"},
	{"leader2", "Popping Leader", "leader123", model.RoleLeader, "popping"},
	{"leader3", "Hiphop Leader", "leader123", model.RoleLeader, "hiphop"},
	{"leader4", "Locking Leader", "leader123", model.RoleLeader, "locking"},
	{"member1", "Member One", "member123", model.RoleMember, ""},
	{"member2", "Member Two", "member123", model.RoleMember, ""},
}

type sample struct {
	name, instructor, location string
	dayOffset                  int
	slot                       string
	capacity                   int
	leader                     string
	description                string
}

var samples = []sample{
	{"Breaking Basics", "Breaking Leader", "Culture Center B201", 0, "18:00-19:30", 15, "leader1", "Breaking fundamentals for complete beginners."},
	{"Popping Basics", "Popping Leader", "Culture Center B201", 1, "18:00-19:30", 15, "leader2", "Hits, waves and isolation drills."},
	{"Hiphop Choreo", "Hiphop Leader", "Gym Studio 2", 2, "19:00-20:30", 20, "leader3", "Grooves and a short routine each week."},
	{"Locking Basics", "Locking Leader", "Gym Studio 2", 3, "19:00-20:30", 20, "leader4", "Locks, points and wrist rolls."},
	{"Open Practice", "Club Admin", "Culture Center B201", 5, "14:00-16:00", 30, "", "Free practice open to everyone."},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users := repository.NewUserRepo(db)
	ids := make(map[string]uint64, len(accounts))
	var admin model.Actor
	for _, a := range accounts {
		u := model.User{Username: a.username, Name: a.name, Email: a.username + "@example.com", Role: a.role}
		if a.danceType != "" {
			dt := a.danceType
			u.DanceType = &dt
		}
		id, err := users.Create(ctx, &u, a.password, cfg.BcryptCost)
		if errors.Is(err, repository.ErrUsernameExists) {
			existing, gerr := users.GetByUsername(ctx, a.username)
			if gerr != nil {
				log.Fatalf("lookup %s: %v", a.username, gerr)
			}
			id, err = existing.ID, nil
		}
		if err != nil {
			log.Fatalf("create %s: %v", a.username, err)
		}
		ids[a.username] = id
		if a.role == model.RoleAdmin {
			admin = model.Actor{ID: id, Role: model.RoleAdmin}
		}

		tok, err := utils.NewAccessToken(cfg.JWTSecret, id, string(a.role), a.danceType, time.Duration(cfg.AccessTTLMin)*time.Minute)
		if err != nil {
			log.Fatalf("token %s: %v", a.username, err)
		}
		fmt.Printf("%-8s id=%-3d role=%-6s token=%s\n", a.username, id, a.role, tok.Token)
	}

	catalog := service.NewCatalogService(repository.NewMySQLStore(db), nil, nil)
	monday, _ := schedule.WeekOf(time.Now().UTC().AddDate(0, 0, 7))
	for _, s := range samples {
		capacity := s.capacity
		in := service.CourseInput{
			Name:        s.name,
			Instructor:  s.instructor,
			Location:    s.location,
			CourseDate:  monday.AddDate(0, 0, s.dayOffset).Format(schedule.DateLayout),
			TimeSlot:    s.slot,
			MaxCapacity: &capacity,
			Description: s.description,
		}
		if s.leader != "" {
			leaderID := ids[s.leader]
			dt := danceTypeOf(s.leader)
			in.LeaderID, in.DanceType = &leaderID, &dt
		}
		c, err := catalog.Create(ctx, admin, in)
		if errors.Is(err, service.ErrScheduleConflict) {
			log.Warnf("skip %q: already scheduled", s.name)
			continue
		}
		if err != nil {
			log.Fatalf("create course %q: %v", s.name, err)
		}
		fmt.Printf("course id=%-3d %s %s %s @ %s\n", c.ID, c.CourseDate, c.TimeSlot, c.Name, c.Location)
	}
}

func danceTypeOf(username string) string {
	for _, a := range accounts {
		if a.username == username {
			return a.danceType
		}
	}
	return ""
}
