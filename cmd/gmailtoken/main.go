// Command gmailtoken performs the one-time OAuth consent for the mail sender
// and stores the resulting token where the API server expects it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/justsurfingit/jobboard/internal/auth"
)

func main() {
	_ = godotenv.Load()

	credFile := os.Getenv("GMAIL_CREDENTIALS_FILE")
	if credFile == "" {
		log.Fatal("GMAIL_CREDENTIALS_FILE is required")
	}
	tokenFile := os.Getenv("GMAIL_TOKEN_FILE")
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	oauthConfig, err := auth.GmailConfig(credFile)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n---------------------------------------------------------\n")
	fmt.Printf("OPEN THIS LINK TO AUTHORIZE GMAIL ACCESS:\n%v\n", auth.AuthCodeURL(oauthConfig))
	fmt.Printf("---------------------------------------------------------\n")
	fmt.Printf("Paste the code here: ")

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		log.Fatalf("Unable to read authorization code: %v", err)
	}

	tok, err := oauthConfig.Exchange(context.Background(), authCode)
	if err != nil {
		log.Fatalf("Unable to retrieve token from web: %v", err)
	}
	if err := auth.SaveToken(tokenFile, tok); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Saved credential file to: %s\n", tokenFile)
}
