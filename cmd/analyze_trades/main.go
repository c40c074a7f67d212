package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pivot-trading-engine/internal/database"
)

func main() {
	exe, _ := os.Executable()
	exeDir := filepath.Dir(exe)

	// Try multiple locations for .env
	godotenv.Load()
	godotenv.Load(".env")
	godotenv.Load(filepath.Join(exeDir, ".env"))
	godotenv.Load(filepath.Join(exeDir, "..", "..", ".env"))

	dateFlag := flag.String("date", time.Now().Format("2006-01-02"), "trading date to analyze (YYYY-MM-DD)")
	flag.Parse()

	date, err := time.Parse("2006-01-02", *dateFlag)
	if err != nil {
		fmt.Printf("❌ Invalid date %q: %v\n", *dateFlag, err)
		os.Exit(1)
	}

	db, err := database.NewDB(database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "pivot_engine"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: getEnv("DB_NAME", "pivot_engine"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	})
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	ctx := context.Background()

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("📊 PIVOT ENGINE TRADE ANALYSIS - %s\n", date.Format("2006-01-02"))
	fmt.Println(strings.Repeat("=", 80))

	trades, err := repo.GetTradesByDate(ctx, date)
	if err != nil {
		fmt.Printf("❌ Failed to fetch trades: %v\n", err)
		os.Exit(1)
	}
	if len(trades) == 0 {
		fmt.Println("\nNo trades recorded for this date.")
		return
	}

	fmt.Printf("\n%-14s %-22s %-4s %-6s %9s %9s %-10s %10s\n",
		"TRADE", "SYMBOL", "SCN", "ENTRY", "ENTRY ₹", "EXIT ₹", "REASON", "PNL ₹")
	fmt.Println(strings.Repeat("-", 92))

	for _, t := range trades {
		entryType := "INTRA"
		if t.FirstCandle {
			entryType = "FIRST"
		}
		exitPrice, exitReason, pnl := "open", "-", "-"
		if t.ExitPrice != nil {
			exitPrice = fmt.Sprintf("%.2f", *t.ExitPrice)
		}
		if t.ExitReason != nil {
			exitReason = *t.ExitReason
		}
		if t.PnLRupees != nil {
			pnl = fmt.Sprintf("%.2f", *t.PnLRupees)
		}
		fmt.Printf("%-14s %-22s S%-3d %-6s %9.2f %9s %-10s %10s\n",
			t.TradeID, t.Symbol, t.Scenario, entryType, t.EntryPrice, exitPrice, exitReason, pnl)
	}

	instrument := trades[0].Instrument
	summary, err := repo.ComputeDailySummary(ctx, date, instrument)
	if err != nil {
		fmt.Printf("\n❌ Failed to compute summary: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("📈 DAILY SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Closed trades:  %d (wins %d, losses %d, win rate %.1f%%)\n",
		summary.TotalTrades, summary.Wins, summary.Losses, summary.WinRate)
	fmt.Printf("Gross PnL:      ₹%.2f\n", summary.GrossPnL)
	fmt.Printf("Scenarios:      S1=%d S2=%d S3=%d\n",
		summary.Scenario1Trades, summary.Scenario2Trades, summary.Scenario3Trades)
	fmt.Printf("Entries:        first-candle=%d intraday=%d\n",
		summary.FirstCandleEntries, summary.IntradayEntries)
	fmt.Printf("Exits:          target=%d stop=%d timeout=%d eod=%d\n",
		summary.TargetsHit, summary.StopLosses, summary.Timeouts, summary.EODExits)

	if summary.GrossPnL >= 0 {
		fmt.Println("\n✅ Net positive day")
	} else {
		fmt.Println("\n🔻 Net negative day")
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
