package main

import (
	_ "github.com/joho/godotenv/autoload"

	"gopherview/cmd"
)

func main() {
	cmd.Execute()
}
