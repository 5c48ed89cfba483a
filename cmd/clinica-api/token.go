package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/auth"
	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/config"
)

// issueToken prints an admin token for the operator endpoints
func issueToken(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: clinica-api token [-ttl 24h] <subject>")
		return 2
	}

	token, err := auth.NewJWTConfig(cfg.JWTSecret).IssueToken(fs.Arg(0), auth.RoleAdmin, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(token)
	return 0
}
