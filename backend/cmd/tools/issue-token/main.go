// issue-token prints an access token for an existing user, for local testing
// of the API with curl.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/itchan-dev/forum/shared/config"
	"github.com/itchan-dev/forum/shared/domain"
	"github.com/itchan-dev/forum/shared/jwt"
)

func main() {
	var configFolder string
	var userId int64
	var admin bool
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Int64Var(&userId, "user", 0, "id of the user the token is issued for")
	flag.BoolVar(&admin, "admin", false, "issue an administrator token")
	flag.Parse()

	if userId <= 0 {
		log.Fatal("-user is required")
	}

	cfg := config.MustLoad(configFolder)
	token, err := jwt.New(cfg.JwtKey(), cfg.JwtTTL()).NewToken(domain.User{Id: userId, Admin: admin})
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Println(token)
	fmt.Println()
	fmt.Printf("curl -H \"Authorization: Bearer %s\" http://localhost:8080/v1/threads\n", token)
}
