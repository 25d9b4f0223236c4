package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db    *sqlx.DB
	store record.Store
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  initdb - apply the database schema")
	fmt.Println("  createsuperadmin -username USERNAME -email EMAIL - create a superadmin account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createCmd := flag.NewFlagSet("createsuperadmin", flag.ExitOnError)
	createUname := createCmd.String("username", "", "The account's username. The password will be prompted next.")
	createEmail := createCmd.String("email", "", "The account's email address.")

	switch args[1] {
	case "initdb":
		return database.Bootstrap(cli.db)
	case "createsuperadmin":
		if err := createCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createUname == "" || *createEmail == "" {
			createCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createCmd.Usage()
			return errHelp
		}
		return cli.createSuperAdmin(*createUname, *createEmail, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
