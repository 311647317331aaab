// Command hash-generator prints bcrypt hashes for seeding users directly in
// the database.
//
//	hash-generator -cost 12 password1 [password2 ...]
package main

import (
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/phrazzld/twit-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-cost N] password [password ...]\n", os.Args[0])
		os.Exit(2)
	}

	failed := false
	for _, password := range flag.Args() {
		hash, err := hashPassword(password, *cost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
			continue
		}
		fmt.Println(hash)
	}
	if failed {
		os.Exit(1)
	}
}

// hashPassword applies the same length rules as account registration.
func hashPassword(password string, cost int) (string, error) {
	n := utf8.RuneCountInString(password)
	if n < domain.MinPasswordLength || n > domain.MaxPasswordLength {
		return "", fmt.Errorf("password must be %d-%d characters", domain.MinPasswordLength, domain.MaxPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("generate hash: %w", err)
	}
	return string(hash), nil
}
