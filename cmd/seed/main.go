package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/config"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/helpers"
)

// seedAccount is one bootstrap row; every organization starts unfunded.
type seedAccount struct {
	Username     string
	Password     string
	Organization string
}

// The fixed competition roster. Passwords follow the <username>cfo
// convention the CFOs were handed; the admin password comes from env.
var organizations = []seedAccount{
	{"zeigler", "zeiglercfo", "Zeigler"},
	{"city", "citycfo", "City of Lafayette"},
	{"purduefederal", "purduefederalcfo", "Purdue Federal Credit Union"},
	{"purdue", "purduecfo", "Purdue University"},
	{"freckles", "frecklescfo", "Freckles Graphics"},
	{"iuhealth", "iuhealthcfo", "IU Health"},
	{"anderson", "andersoncfo", "Anderson Heating & Cooling"},
	{"wabash", "wabashcfo", "Wabash"},
	{"caterpillar", "caterpillarcfo", "Caterpillar"},
	{"statefarm", "statefarmcfo", "State Farm"},
	{"azzip", "azzipcfo", "Azzip Pizza"},
	{"kirbyrisk", "kirbyriskcfo", "Kirby Risk"},
	{"tipmont", "tipmontcfo", "Tipmont"},
	{"generalelectric", "generalelectriccfo", "GE Aerospace"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Seed only once; a non-empty table means bootstrap already ran.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		log.Fatalf("failed to count accounts: %v", err)
	}
	if count > 0 {
		fmt.Printf("accounts table already has %d rows, nothing to seed\n", count)
		return
	}

	accounts := append([]seedAccount{}, organizations...)
	accounts = append(accounts, seedAccount{cfg.AdminUsername, cfg.AdminPassword, "JA Admin"})

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("failed to begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range accounts {
		hash, err := helpers.HashPassword(a.Password)
		if err != nil {
			log.Fatalf("failed to hash password for %s: %v", a.Username, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO accounts (username, password_hash, organization, loan_amount, balance)
			VALUES ($1, $2, $3, 0, 0)
		`, a.Username, hash, a.Organization); err != nil {
			log.Fatalf("failed to seed account %s: %v", a.Username, err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("failed to commit seed: %v", err)
	}
	fmt.Printf("seeded %d organizational accounts plus admin %q\n", len(organizations), cfg.AdminUsername)
}
