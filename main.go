package main

import (
	"os"

	"rembot/pkg/cmd"
	"rembot/pkg/errs"

	"github.com/joho/godotenv"
)

func main() {
	envFiles := make([]string, 0, 3)
	for _, name := range []string{".env.default", ".env.secret", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			envFiles = append(envFiles, name)
		}
	}

	if len(envFiles) > 0 {
		err := godotenv.Overload(envFiles...)
		errs.Handle(err, true)
	}

	err := cmd.Execute()
	errs.Handle(err, true)
}
