package domain

import "time"

type RankedUser struct {
	UserId UserId `msgpack:"user_id" json:"id"`
	Name   string `msgpack:"name" json:"username"`
	Score  int    `msgpack:"score" json:"score"`
}

type Ranking struct {
	Users      []RankedUser `msgpack:"users" json:"users"`
	UsersCount int          `msgpack:"users_count" json:"users_count"`
	BuiltOn    time.Time    `msgpack:"built_on" json:"built_on"`
}
