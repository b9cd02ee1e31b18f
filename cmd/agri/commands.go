package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	apperrors "github.com/jrsteele09/go-agri-client/internal/errors"
	"github.com/jrsteele09/go-agri-client/session"
	"github.com/jrsteele09/go-agri-client/surveys"
	"github.com/jrsteele09/go-agri-client/token"
	"github.com/jrsteele09/go-agri-client/users"
)

const passwordEnvVar = "AGRI_PASSWORD"

var errUsage = errors.New("usage")

type commandFn func(a *app, args []string) error

type command struct {
	name        string
	description string
	banner      bool
	run         commandFn
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in with any role and store the session",
			banner:      true,
			run:         runLogin,
		},
		"admin-login": {
			name:        "admin-login",
			description: "Sign in to the admin area",
			banner:      true,
			run:         areaLogin(users.AreaAdmin),
		},
		"employee-login": {
			name:        "employee-login",
			description: "Sign in to the field employee area",
			banner:      true,
			run:         areaLogin(users.AreaEmployee),
		},
		"lab-login": {
			name:        "lab-login",
			description: "Sign in to the lab area",
			banner:      true,
			run:         areaLogin(users.AreaLab),
		},
		"logout": {
			name:        "logout",
			description: "Remove the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the identity of the stored session",
			run:         runWhoami,
		},
		"survey": {
			name:        "survey",
			description: "Farmer surveys: get <id>... | list | selfie <id> <file>",
			run:         runSurvey,
		},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: agri <command> [flags]\n\n")
	fmt.Fprintf(w, "Available commands:\n")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, cmds[name].description)
	}
}

type credentials struct {
	username string
	password string
}

func parseCredentials(a *app, name string, args []string) (*credentials, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	creds := &credentials{}
	fs.StringVar(&creds.username, "u", "", "username or employee code")
	fs.StringVar(&creds.password, "p", "", "password (defaults to $"+passwordEnvVar+", then a prompt)")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}

	if creds.password == "" {
		creds.password = os.Getenv(passwordEnvVar)
	}
	if creds.username == "" || creds.password == "" {
		reader := bufio.NewReader(a.stdin)
		if creds.username == "" {
			creds.username = prompt(a.stdout, reader, "Username: ")
		}
		if creds.password == "" {
			creds.password = prompt(a.stdout, reader, "Password: ")
		}
	}
	return creds, nil
}

func prompt(w io.Writer, r *bufio.Reader, label string) string {
	fmt.Fprint(w, label)
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func runLogin(a *app, args []string) error {
	creds, err := parseCredentials(a, "login", args)
	if err != nil {
		return err
	}
	result, err := a.session.Login(a.ctx, creds.username, creds.password)
	if err != nil {
		return err
	}
	printLoginResult(a.stdout, result)
	return nil
}

func areaLogin(area users.Area) commandFn {
	return func(a *app, args []string) error {
		creds, err := parseCredentials(a, string(area)+"-login", args)
		if err != nil {
			return err
		}
		result, err := a.session.LoginAs(a.ctx, creds.username, creds.password, users.AreaRoles(area)...)
		if err != nil {
			return err
		}
		printLoginResult(a.stdout, result)
		return nil
	}
}

func printLoginResult(w io.Writer, result *session.LoginResult) {
	fmt.Fprintf(w, "Logged in as %s (%s)\n", result.Claims.EmployeeName, result.Role)
	fmt.Fprintf(w, "Dashboard: %s\n", result.DashboardPath)
}

func runLogout(a *app, _ []string) error {
	if err := a.session.Logout(a.ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func runWhoami(a *app, _ []string) error {
	tok, err := token.NewTokenSource(a.ctx, a.store).Token()
	if errors.Is(err, apperrors.ErrNoSession) {
		fmt.Fprintln(a.stdout, "Not logged in")
		return nil
	}
	if errors.Is(err, apperrors.ErrSessionExpired) {
		fmt.Fprintln(a.stdout, "Session expired. Please log in again.")
		return nil
	}
	if err != nil {
		return err
	}
	claims, err := a.store.Claims(a.ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Role\t%s\n", claims.Role)
	fmt.Fprintf(w, "Employee code\t%s\n", claims.EmployeeCode)
	fmt.Fprintf(w, "Name\t%s\n", claims.EmployeeName)
	if claims.UserID != "" {
		fmt.Fprintf(w, "User ID\t%s\n", claims.UserID)
	}
	fmt.Fprintf(w, "Dashboard\t%s\n", users.DashboardPath(claims.Role))
	if !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Expires\t%s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Fprintf(w, "Renew before\t%s\n", tok.Expiry.Local().Format(time.RFC1123))
	return w.Flush()
}

func runSurvey(a *app, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "usage: agri survey get <id>... | list | selfie <id> <file>")
		return errUsage
	}

	switch sub, rest := args[0], args[1:]; {
	case sub == "list" && len(rest) == 0:
		return surveyList(a)
	case sub == "get" && len(rest) >= 1:
		return surveyGet(a, rest)
	case sub == "selfie" && len(rest) == 2:
		return surveySelfie(a, rest[0], rest[1])
	}
	fmt.Fprintln(a.stderr, "usage: agri survey get <id>... | list | selfie <id> <file>")
	return errUsage
}

func surveyList(a *app) error {
	list, err := a.surveys.List(a.ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFORM\tFARMER\tVILLAGE\tSTATUS")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.SurveyID, s.FormNumber, s.FarmerName, s.Village, s.FormStatus)
	}
	return w.Flush()
}

func surveyGet(a *app, ids []string) error {
	list, err := a.surveys.GetMany(a.ctx, ids)
	if err != nil {
		return err
	}
	for i, s := range list {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		if err := printSurvey(a.stdout, s); err != nil {
			return err
		}
	}
	return nil
}

func printSurvey(out io.Writer, s *surveys.Survey) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", s.SurveyID)
	fmt.Fprintf(w, "Form\t%s\n", s.FormNumber)
	fmt.Fprintf(w, "Status\t%s\n", s.FormStatus)
	fmt.Fprintf(w, "Farmer\t%s\n", s.FarmerName)
	fmt.Fprintf(w, "Mobile\t%s\n", s.FarmerMobile)
	fmt.Fprintf(w, "Village\t%s\n", s.Village)
	fmt.Fprintf(w, "Taluka\t%s\n", s.Taluka)
	fmt.Fprintf(w, "District\t%s\n", s.District)
	fmt.Fprintf(w, "Land area\t%s\n", s.LandArea)
	fmt.Fprintf(w, "Crops\t%s\n", strings.Join(s.CropDetails, ", "))
	fmt.Fprintf(w, "Livestock\t%s\n", strings.Join(s.LivestockDetails, ", "))
	fmt.Fprintf(w, "Sample collected\t%t\n", s.SampleCollected)
	return w.Flush()
}

func surveySelfie(a *app, id, file string) error {
	s, err := a.surveys.Get(a.ctx, id)
	if err != nil {
		return err
	}
	img, err := s.SelfieJPEG()
	if err != nil {
		return err
	}
	if file == "-" {
		file = s.SelfieFilename()
	}
	if err := os.WriteFile(file, img, 0o600); err != nil {
		return fmt.Errorf("write selfie: %w", err)
	}
	fmt.Fprintf(a.stdout, "Saved %d bytes to %s\n", len(img), file)
	return nil
}
