package main

import (
	"log"

	"github.com/craprotocol/echo/internal/auth"
)

func main() {
	log.Default().Println("generating api key...")
	log.Default().Println(" ")

	k, err := auth.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Printf("API_KEY=%s\n", k)
}
