// cmd/tools/push-batch/main.go
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pushgen-workers/internal/common/config"
	"pushgen-workers/internal/common/logger"
	"pushgen-workers/internal/models"
	"pushgen-workers/internal/push"
	"pushgen-workers/internal/recommend"
	"pushgen-workers/internal/scoring"
)

// push-batch runs the whole scoring and push pipeline offline against CSV
// exports: no broker, no database, no AWS. Useful for datasets, demos, and
// regression checks against a known data drop.

type resultRow struct {
	ClientCode int      `json:"client_code"`
	Product    string   `json:"product"`
	Benefit    float64  `json:"expected_benefit"`
	Confidence float64  `json:"confidence"`
	PushText   string   `json:"push_notification"`
	Valid      bool     `json:"push_valid"`
	Issues     []string `json:"push_issues,omitempty"`
}

func main() {
	dataDir := flag.String("data", "data", "directory with clients.csv and per-client tables")
	outDir := flag.String("out", "out", "output directory")
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	calculator, err := scoring.NewCalculator(cfg.Rates)
	if err != nil {
		zapLog.Fatal("rate configuration rejected", zap.Error(err))
	}

	clients, err := loadClients(filepath.Join(*dataDir, "clients.csv"))
	if err != nil {
		zapLog.Fatal("clients load failed", zap.Error(err))
	}
	zapLog.Info("clients loaded", zap.Int("count", len(clients)))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		zapLog.Fatal("create output directory", zap.Error(err))
	}

	now := time.Now()
	results := make([]resultRow, 0, len(clients))

	for _, client := range clients {
		tx, err := loadTransactions(filepath.Join(*dataDir, fmt.Sprintf("client_%d_transactions_3m.csv", client.ClientCode)))
		if err != nil {
			zapLog.Warn("transactions missing, scoring on empty table",
				zap.Int("clientCode", client.ClientCode), zap.Error(err))
		}
		tr, err := loadTransfers(filepath.Join(*dataDir, fmt.Sprintf("client_%d_transfers_3m.csv", client.ClientCode)))
		if err != nil {
			zapLog.Warn("transfers missing, scoring on empty table",
				zap.Int("clientCode", client.ClientCode), zap.Error(err))
		}

		results = append(results, processClient(calculator, cfg, client, tx, tr, now))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ClientCode < results[j].ClientCode })

	csvPath := filepath.Join(*outDir, "push_recommendations.csv")
	if err := writeCSV(csvPath, results); err != nil {
		zapLog.Fatal("write csv failed", zap.Error(err))
	}

	jsonPath := filepath.Join(*outDir, "push_recommendations.jsonl")
	if err := writeJSONL(jsonPath, results); err != nil {
		zapLog.Fatal("write jsonl failed", zap.Error(err))
	}

	zapLog.Info("batch complete",
		zap.Int("clients", len(results)),
		zap.String("csv", csvPath),
		zap.String("jsonl", jsonPath),
	)
}

// processClient runs the rules-only pipeline for one client: benefits,
// ranking, combiner fallback path, template push, validation.
func processClient(calc *scoring.Calculator, cfg *config.Config, client models.ClientProfile, tx []models.Transaction, tr []models.Transfer, now time.Time) resultRow {
	benefits, _ := calc.ComputeBenefits(client, tx, tr)
	ranked := scoring.Rank(benefits)

	var ruleTop *models.Prediction
	if conf := scoring.RuleConfidence(ranked); conf > 0 {
		ruleTop = &models.Prediction{Product: ranked[0].Product, Confidence: conf}
	}
	final := recommend.Combine(ruleTop, nil)

	refMonth := push.ReferenceMonth(tx, now)
	behavior := push.BuildBehavior(tx, cfg.Rates.TravelCategories)
	text := push.GenerateTemplatePush(client, behavior, final.Product, benefits[final.Product], refMonth)

	check := push.ValidatePush(text)
	if !check.OK {
		text = push.Autocorrect(text)
		check = push.ValidatePush(text)
	}

	return resultRow{
		ClientCode: client.ClientCode,
		Product:    final.Product,
		Benefit:    benefits[final.Product],
		Confidence: final.Confidence,
		PushText:   text,
		Valid:      check.OK,
		Issues:     check.Issues,
	}
}

func loadClients(path string) ([]models.ClientProfile, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	clients := make([]models.ClientProfile, 0, len(records))
	for _, rec := range records {
		code, err := strconv.Atoi(field(rec, header, "client_code"))
		if err != nil {
			continue
		}
		age, _ := strconv.Atoi(field(rec, header, "age"))
		balance, _ := strconv.ParseFloat(field(rec, header, "avg_monthly_balance_KZT"), 64)

		clients = append(clients, models.ClientProfile{
			ClientCode:        code,
			Name:              field(rec, header, "name"),
			Status:            models.ClientStatus(field(rec, header, "status")),
			Age:               age,
			City:              field(rec, header, "city"),
			AvgMonthlyBalance: balance,
		})
	}
	return clients, nil
}

func loadTransactions(path string) ([]models.Transaction, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	tx := make([]models.Transaction, 0, len(records))
	for _, rec := range records {
		amount, _ := strconv.ParseFloat(field(rec, header, "amount"), 64)
		tx = append(tx, models.Transaction{
			Date:     field(rec, header, "date"),
			Category: field(rec, header, "category"),
			Amount:   amount,
			Currency: field(rec, header, "currency"),
		})
	}
	return tx, nil
}

func loadTransfers(path string) ([]models.Transfer, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	tr := make([]models.Transfer, 0, len(records))
	for _, rec := range records {
		amount, _ := strconv.ParseFloat(field(rec, header, "amount"), 64)
		tr = append(tr, models.Transfer{
			Date:      field(rec, header, "date"),
			Type:      models.TransferType(field(rec, header, "type")),
			Direction: field(rec, header, "direction"),
			Amount:    amount,
			Currency:  field(rec, header, "currency"),
		})
	}
	return tr, nil
}

func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[name] = i
	}
	return rows[1:], header, nil
}

func field(rec []string, header map[string]int, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func writeCSV(path string, results []resultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"client_code", "product", "push_notification"}); err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write([]string{strconv.Itoa(r.ClientCode), r.Product, r.PushText}); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeJSONL(path string, results []resultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
