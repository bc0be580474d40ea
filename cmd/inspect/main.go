// Command inspect prints the identities stored by the client, one row per scope.
package main

import (
	"chat-rooms/identity"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dir := flag.String("path", ".chat-rooms", "Directory holding one identity database per scope")
	flag.Parse()

	scopes, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("Error while listing scopes: ", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Scope", "Key", "Client ID"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, scope := range scopes {
		if !scope.IsDir() {
			continue
		}
		rows, err := readScope(filepath.Join(*dir, scope.Name()))
		if err != nil {
			fmt.Printf("Error reading scope %s: %v\n", scope.Name(), err)
			continue
		}
		for _, row := range rows {
			table.Append(append([]string{scope.Name()}, row...))
		}
	}
	table.Render()
}

// readScope lists the identity entries of one scope database.
func readScope(path string) ([][]string, error) {
	db, err := badger.Open(badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var rows [][]string
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(identity.Key)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rows = append(rows, []string{string(item.Key()), string(value)})
		}
		return nil
	})
	return rows, err
}
