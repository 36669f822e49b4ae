// Package csvio reads raw input rows from CSV and writes the consistency
// report back out.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/martinsuchenak/fqdngen/internal/model"
)

// ReportHeader is the fixed report column layout. A Reachable column is
// appended only when the ICMP probe ran.
var ReportHeader = []string{
	"FQDN",
	"PTR",
	"IP Address",
	"FLU Exists",
	"FLU Existing Value",
	"FLU Needs Update",
	"RLU Exists",
	"RLU Existing Value",
	"RLU Needs Update",
}

// ReadRows parses a CSV input into raw rows. The first record is a header;
// columns are matched by name, so order and extra columns do not matter.
// Required columns: ip_address, device_hostname. Optional: interface_name,
// domain (domain_name is accepted as an alias).
func ReadRows(r io.Reader) ([]model.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	ipCol, ok := columns["ip_address"]
	if !ok {
		return nil, fmt.Errorf("input is missing the ip_address column")
	}
	hostCol, ok := columns["device_hostname"]
	if !ok {
		return nil, fmt.Errorf("input is missing the device_hostname column")
	}
	ifaceCol, hasIface := columns["interface_name"]
	domainCol, hasDomain := columns["domain"]
	if !hasDomain {
		domainCol, hasDomain = columns["domain_name"]
	}

	var rows []model.Row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		row := model.Row{
			IPAddress:      field(fields, ipCol),
			DeviceHostname: field(fields, hostCol),
		}
		if hasIface {
			row.InterfaceName = field(fields, ifaceCol)
		}
		if hasDomain && domainCol < len(fields) {
			domain := fields[domainCol]
			row.Domain = &domain
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}

// WriteReport renders one report row per record in the fixed column layout.
// withReachable adds the probe column.
func WriteReport(w io.Writer, records []*model.Record, withReachable bool) error {
	writer := csv.NewWriter(w)

	header := ReportHeader
	if withReachable {
		header = append(append([]string{}, header...), "Reachable")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.FullName,
			rec.PTRRecord,
			rec.IPAddress,
			strconv.FormatBool(rec.Forward.Status.Exists()),
			rec.Forward.ExistingValue,
			strconv.FormatBool(rec.Forward.Status.NeedsUpdate()),
			strconv.FormatBool(rec.Reverse.Status.Exists()),
			rec.Reverse.ExistingValue,
			strconv.FormatBool(rec.Reverse.Status.NeedsUpdate()),
		}
		if withReachable {
			reachable := ""
			if rec.Reachable != nil {
				reachable = strconv.FormatBool(*rec.Reachable)
			}
			row = append(row, reachable)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing report row for %s: %w", rec.FullName, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
