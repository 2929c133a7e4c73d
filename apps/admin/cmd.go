package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/admin"
	"github.com/examcenter/backend/core/testdate"
	"github.com/examcenter/backend/storage/database"
)

// cliActor is recorded as the author of every change made from the command line.
const cliActor = "admin-cli"

var (
	gooseRunFunc = database.Migrate // mockable

	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("no database configured")
)

type commandLine struct {
	db          *sql.DB
	testDateSvc testdate.Service
	allowlist   admin.Allowlist
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status...)")
	_, _ = fmt.Fprintln(cli.out, "  generate -exam EXAM -from YYYY-MM-DD -to YYYY-MM-DD [-sessions 1|2] [-note NOTE] - publish every day of a range")
	_, _ = fmt.Fprintln(cli.out, "  list -exam EXAM [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-active] [-deleted] - list test dates")
	_, _ = fmt.Fprintln(cli.out, "  delete -exam EXAM -date YYYY-MM-DD - delete a test date")
	_, _ = fmt.Fprintln(cli.out, "  allowlist - print the configured admin emails")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	generateCmd := cli.newFlagSet("generate")
	generateExam := generateCmd.String("exam", "", "The exam type: toefl, gre or act.")
	generateFrom := generateCmd.String("from", "", "The first day of the range.")
	generateTo := generateCmd.String("to", "", "The last day of the range.")
	generateSessions := generateCmd.Int("sessions", 1, "Sessions per day: 1 or 2.")
	generateNote := generateCmd.String("note", "", "An optional note shown with every day.")

	listCmd := cli.newFlagSet("list")
	listExam := listCmd.String("exam", "", "The exam type: toefl, gre or act.")
	listFrom := listCmd.String("from", "", "Skip days before this one.")
	listTo := listCmd.String("to", "", "Skip days after this one.")
	listActive := listCmd.Bool("active", false, "Only list active days.")
	listDeleted := listCmd.Bool("deleted", false, "Include deleted days.")

	deleteCmd := cli.newFlagSet("delete")
	deleteExam := deleteCmd.String("exam", "", "The exam type: toefl, gre or act.")
	deleteDate := deleteCmd.String("date", "", "The day to delete.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "generate":
		if err := generateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *generateExam == "" || *generateFrom == "" || *generateTo == "" {
			generateCmd.Usage()
			return errHelp
		}
		return cli.generate(ctx, testdate.BulkTestDates{
			Exam:      testdate.ExamType(*generateExam),
			StartDate: *generateFrom,
			EndDate:   *generateTo,
			Sessions:  *generateSessions,
			Note:      *generateNote,
		})
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *listExam == "" {
			listCmd.Usage()
			return errHelp
		}
		filter, err := newQueryFilter(*listExam, *listFrom, *listTo)
		if err != nil {
			return err
		}
		filter.ActiveOnly, filter.IncludeDeleted = *listActive, *listDeleted
		return cli.list(ctx, filter)
	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteExam == "" || *deleteDate == "" {
			deleteCmd.Usage()
			return errHelp
		}
		return cli.delete(ctx, *deleteExam, *deleteDate)
	case "allowlist":
		cli.printAllowlist()
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

func (cli *commandLine) generate(ctx context.Context, bt testdate.BulkTestDates) error {
	bt.Clean()
	res, err := cli.testDateSvc.Generate(ctx, bt, cliActor)
	if err != nil {
		if res.Created > 0 {
			color.New(color.FgYellow).Fprintf(cli.out, "stopped after creating %d day(s)\n", res.Created)
		}
		return err
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Created", "Already published", "In the past"})
	table.Append([]string{strconv.Itoa(res.Created), strconv.Itoa(res.DuplicateSkipped), strconv.Itoa(res.PastSkipped)})
	table.Render()

	color.New(color.FgGreen).Fprintf(cli.out, "%s: %s .. %s done\n", bt.Exam, bt.StartDate, bt.EndDate)
	return nil
}

func (cli *commandLine) list(ctx context.Context, filter testdate.QueryFilter) error {
	dates, err := cli.testDateSvc.Query(ctx, filter)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		color.New(color.FgYellow).Fprintln(cli.out, "no test dates found")
		return nil
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Date", "Sessions", "Active", "State", "Note", "Updated by"})
	for _, td := range dates {
		table.Append([]string{
			td.Date.String(),
			strconv.Itoa(td.Sessions),
			strconv.FormatBool(td.IsActive),
			td.State().String(),
			td.Note,
			td.UpdatedBy,
		})
	}
	table.Render()
	return nil
}

func (cli *commandLine) delete(ctx context.Context, exam, date string) error {
	e, err := testdate.ParseExamType(exam)
	if err != nil {
		return err
	}
	d, err := parseDate(date)
	if err != nil {
		return err
	}
	if err = cli.testDateSvc.Delete(ctx, e, d, cliActor); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "deleted %s\n", testdate.EncodeKey(e, d))
	return nil
}

func (cli *commandLine) printAllowlist() {
	emails := cli.allowlist.Emails()
	if len(emails) == 0 {
		color.New(color.FgRed).Fprintln(cli.out, "the allowlist is empty: nobody can sign in")
		return
	}
	sort.Strings(emails)

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Admin email"})
	for _, email := range emails {
		table.Append([]string{email})
	}
	table.Render()
}

func newQueryFilter(exam, from, to string) (testdate.QueryFilter, error) {
	var filter testdate.QueryFilter
	var err error
	if filter.Exam, err = testdate.ParseExamType(exam); err != nil {
		return filter, err
	}
	if from != "" {
		if filter.From, err = parseDate(from); err != nil {
			return filter, err
		}
	}
	if to != "" {
		if filter.To, err = parseDate(to); err != nil {
			return filter, err
		}
	}
	return filter, nil
}

func parseDate(s string) (civil.Date, error) {
	s = core.CleanString(s)
	if !core.IsISODate(s) {
		return civil.Date{}, fmt.Errorf("%q is not a valid date in YYYY-MM-DD format", s)
	}
	return civil.ParseDate(s)
}
