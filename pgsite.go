package main

import (
	"bytes"
	gocontext "context"
	"database/sql"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pgcommunity/pgsite/auth"
	"github.com/pgcommunity/pgsite/backend"
	"github.com/pgcommunity/pgsite/core"
	"github.com/pgcommunity/pgsite/rss"
	"github.com/pgcommunity/pgsite/site"
	"github.com/pgcommunity/pgsite/sqldb"
	"github.com/pgcommunity/pgsite/sqldb/mysql"
	"github.com/pgcommunity/pgsite/sqldb/sqlite3"
	"github.com/robfig/cron"
	"github.com/rs/zerolog"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

func main() {

	var dbArg string // is in both FlagSets

	// default FlagSet

	flag.StringVar(&dbArg, "db", "sqlite3:pgsite.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")
	var logLevel = flag.String("log", "info", "zerolog `level`")
	var rssCron = flag.String("rsscron", "@hourly", "cron `schedule` for the RSS importer")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", "sqlite3:pgsite.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl") // copied from above
	var initInsert = initFlags.Bool("insert", false, "creates the given group, user, organisation or orgtype")
	var initJoin = initFlags.Bool("join", false, "joins the given user to the given group")
	var initManage = initFlags.Bool("manage", false, "makes the given user a manager of the given organisation")
	var initGrant = initFlags.String("grant", "", "grants the `capability` (moderate or admin) to the given group")
	var groupname = initFlags.String("group", "", "specifies a group `name`")
	var username = initFlags.String("user", "", "specifies a user `name`")
	var orgname = initFlags.String("org", "", "specifies an organisation `name`")
	var orgtype = initFlags.String("orgtype", "", "specifies an organisation type `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// logging

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		logger.Error().Err(err).Msg("could not parse database url")
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		logger.Error().Err(err).Msg("could not open sql database")
		return
	}

	if err = sqlDB.Ping(); err != nil {
		logger.Error().Err(err).Msg("could not ping sql database")
		return
	}

	logger.Info().Str("url", dbURL.String()).Msg("using database")

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		logger.Error().Str("driver", dbURL.Driver).Msg("unknown database backend")
		return
	}

	db := &core.CoreDB{}
	if err := db.Init(sessionStore, ""); err != nil {
		logger.Error().Err(err).Msg("initializing")
		return
	}

	db.Auth = &auth.AuthDB{
		GroupDB: sqldb.NewGroupDB(sqlDB),
		UserDB:  sqldb.NewUserDB(sqlDB),
	}
	db.CapabilityDB = sqldb.NewCapabilityDB(sqlDB)
	db.FeedDB = sqldb.NewFeedDB(sqlDB)
	db.NewsDB = sqldb.NewNewsDB(sqlDB)
	db.OrgDB = sqldb.NewOrgDB(sqlDB)
	db.QuoteDB = sqldb.NewQuoteDB(sqlDB)
	db.TagDB = sqldb.NewTagDB(sqlDB)
	db.SqlDB = sqlDB

	defer func() {
		logger.Info().Msg("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		switch {
		case *initInsert:
			if *groupname != "" {
				insertGroup(db, logger, *groupname)
			}
			if *username != "" {
				insertUser(db, logger, *username)
			}
			if *orgtype != "" {
				insertOrgType(db, logger, *orgtype)
			}
			if *orgname != "" && *orgtype == "" {
				insertOrg(db, logger, *orgname)
			}
		case *initJoin:
			if *groupname != "" && *username != "" {
				join(db, logger, *groupname, *username)
			}
		case *initManage:
			if *orgname != "" && *username != "" {
				manage(db, logger, *orgname, *username)
			}
		case *initGrant != "":
			if *groupname != "" {
				grant(db, logger, *groupname, *initGrant)
			}
		}
		return
	}

	listen(db, logger, *listenAddr, *rssCron)
}

func insertGroup(db *core.CoreDB, logger zerolog.Logger, name string) {
	if _, err := db.Auth.InsertGroup(name); err != nil {
		logger.Error().Err(err).Str("group", name).Msg("creating group")
	}
}

func insertUser(db *core.CoreDB, logger zerolog.Logger, name string) {

	fmt.Printf("password for user %s: ", name)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		logger.Error().Err(err).Msg("reading password")
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		logger.Error().Err(err).Msg("reading password")
		return
	}

	if !bytes.Equal(pass1, pass2) {
		logger.Error().Msg("passwords don't match")
		return
	}

	user, err := db.Auth.InsertUser(name)
	if err != nil {
		logger.Error().Err(err).Str("user", name).Msg("creating user")
		return
	}

	if err := db.Auth.SetPassword(user, string(pass1)); err != nil {
		logger.Error().Err(err).Msg("setting password")
		return
	}
}

func insertOrg(db *core.CoreDB, logger zerolog.Logger, name string) {
	if _, err := db.CreateOrganisation(name, "", "", 0); err != nil {
		logger.Error().Err(err).Str("org", name).Msg("creating organisation")
	}
}

func insertOrgType(db *core.CoreDB, logger zerolog.Logger, typeName string) {
	if err := db.InsertOrgType(typeName); err != nil {
		logger.Error().Err(err).Str("orgtype", typeName).Msg("creating organisation type")
	}
}

func join(db *core.CoreDB, logger zerolog.Logger, groupname, username string) {

	group, err := db.Auth.GetGroupByName(groupname)
	if err != nil {
		logger.Error().Err(err).Str("group", groupname).Msg("getting group")
		return
	}

	user, err := db.Auth.GetUserByName(username)
	if err != nil {
		logger.Error().Err(err).Str("user", username).Msg("getting user")
		return
	}

	if err := db.Auth.Join(group, user); err != nil {
		logger.Error().Err(err).Msg("joining")
		return
	}
}

func manage(db *core.CoreDB, logger zerolog.Logger, orgname, username string) {

	dbOrg, err := db.GetOrgByName(orgname)
	if err != nil {
		logger.Error().Err(err).Str("org", orgname).Msg("getting organisation")
		return
	}

	user, err := db.Auth.GetUserByName(username)
	if err != nil {
		logger.Error().Err(err).Str("user", username).Msg("getting user")
		return
	}

	if err := db.OrgDB.AddManager(dbOrg, user); err != nil {
		logger.Error().Err(err).Msg("adding manager")
		return
	}
}

func grant(db *core.CoreDB, logger zerolog.Logger, groupname, capability string) {

	var required core.Capability
	switch capability {
	case "moderate":
		required = core.Moderate
	case "admin":
		required = core.Admin
	default:
		logger.Error().Str("capability", capability).Msg("unknown capability")
		return
	}

	group, err := db.Auth.GetGroupByName(groupname)
	if err != nil {
		logger.Error().Err(err).Str("group", groupname).Msg("getting group")
		return
	}

	if err := db.AddCapabilityRule(group.ID(), required); err != nil {
		logger.Error().Err(err).Msg("granting capability")
		return
	}
}

func listen(db *core.CoreDB, logger zerolog.Logger, addr string, rssCron string) {

	// rss importer

	var importer = rss.NewImporter(db.FeedDB, logger)

	var scheduler = cron.New()
	if err := scheduler.AddFunc(rssCron, func() {
		importer.Run(gocontext.Background())
	}); err != nil {
		logger.Error().Err(err).Msg("scheduling RSS importer")
		return
	}
	scheduler.Start()
	defer scheduler.Stop()

	go importer.Run(gocontext.Background()) // once at startup

	// mux
	//
	// the backend router carries absolute paths, so it is mounted without
	// prefix stripping and login redirects stay intact

	var mux = http.NewServeMux()
	var backendRouter = backend.NewBackendRouter(db)
	mux.Handle("/admin/", backendRouter)
	mux.Handle("/account/", backendRouter)
	mux.Handle("/", site.NewSiteRouter(db))

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error().Err(err).Msg("listening")
		return
	}

	logger.Info().Str("addr", addr).Msg("listening")

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("serving")
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	logger.Info().Msg("shutting down")
	httpSrv.Close()
}
