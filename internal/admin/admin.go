// Package admin implements the todoapi-admin command line tool used to
// bootstrap accounts directly in the database.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"
)

const (
	cmdCreateUser = "create-user"
	defaultRole   = "admin"
)

var (
	ErrUsage            = errors.New("usage: todoapi-admin create-user -d DSN -n NAME -e EMAIL [-r ROLE]")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyPassword    = errors.New("password must not be empty")
)

// seams for tests
var (
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
	openDB       = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	newManager   = repomanager.NewPostgresRepositoryManager
)

type CreateUserParams struct {
	DSN   string
	Name  string
	Email string
	Role  string
}

// Run executes the command in args (program name excluded), writing prompts
// and results to out.
func Run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] != cmdCreateUser {
		return ErrUsage
	}

	p, err := parseCreateUser(args[1:], out)
	if err != nil {
		return err
	}

	password, err := promptPassword(out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	db, err := openDB(p.DSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := newManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	u, err := CreateUser(ctx, db, rm, p, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created user %d (%s) with role %q\n", u.ID, u.Email, p.Role)
	return nil
}

func parseCreateUser(args []string, out io.Writer) (CreateUserParams, error) {
	var p CreateUserParams

	fs := flag.NewFlagSet(cmdCreateUser, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&p.DSN, "d", "", "database DSN")
	fs.StringVar(&p.Name, "n", "", "user name")
	fs.StringVar(&p.Email, "e", "", "user email")
	fs.StringVar(&p.Role, "r", defaultRole, "role to assign")

	if err := fs.Parse(args); err != nil {
		return p, err
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Role = strings.TrimSpace(p.Role)
	if p.DSN == "" || p.Name == "" || p.Email == "" || p.Role == "" {
		return p, ErrUsage
	}
	return p, nil
}

// promptPassword reads the password twice without echo. The returned slice
// should be wiped by the caller.
func promptPassword(w io.Writer) ([]byte, error) {
	fmt.Fprint(w, "Enter password: ")
	first, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if len(first) == 0 {
		return nil, ErrEmptyPassword
	}
	if string(first) != string(second) {
		common.WipeByteArray(first)
		return nil, ErrPasswordMismatch
	}
	return first, nil
}

// CreateUser inserts the user, finds or creates the role and assigns it, all
// in one transaction.
func CreateUser(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager, p CreateUserParams, password []byte) (*models.User, error) {
	hash, err := auth.HashPassword(string(password))
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := rm.Users(tx).Create(ctx, &models.User{Name: p.Name, Email: p.Email, Password: hash})
		if err != nil {
			return err
		}

		roles := rm.Roles(tx)
		role, err := roles.GetByName(ctx, p.Role)
		if errors.Is(err, common.ErrorNotFound) {
			role, err = roles.Create(ctx, &models.Role{Name: p.Role})
		}
		if err != nil {
			return err
		}

		if _, err := rm.UserRoles(tx).Create(ctx, u.ID, role.ID); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
