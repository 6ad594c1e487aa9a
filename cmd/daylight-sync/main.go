package main

import (
	"github.com/joho/godotenv"

	"github.com/oshokin/daylight-sync/cmd/daylight-sync/cmd"
)

func main() {
	// Optional .env file with DAYLIGHT_SYNC_* overrides; absence is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
