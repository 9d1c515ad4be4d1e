package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"realchat/codec"
	"realchat/repositories"
)

// inspect dumps store records as a table, one row per key. Message
// bodies stay hidden unless the encryption secret is supplied.
func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (user:, conv:, msg:, msgref:)")
	secret := flag.String("secret", "", "Encryption secret; when set, message bodies are decrypted")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Namespace", "Timestamp", "Entity ID", "Detail"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v, *secret))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

func toRow(key string, value []byte, secret string) []string {
	parts := strings.Split(key, ":")
	namespace := parts[0]
	timestamp := "--:--:--"
	entityID := parts[len(parts)-1]
	detail := fmt.Sprintf("size=%d bytes", len(value))

	switch namespace {
	case "user":
		var user repositories.User
		if err := json.Unmarshal(value, &user); err == nil {
			entityID = user.ID
			timestamp = user.CreatedAt.Format("15:04:05")
			detail = "username=" + user.Username
		}
	case "conv":
		var conv repositories.DiskConversation
		if err := json.Unmarshal(value, &conv); err == nil {
			timestamp = conv.CreatedAt.Format("15:04:05")
			title := "<untitled>"
			if conv.Title != nil {
				title = *conv.Title
			}
			detail = fmt.Sprintf("title=%s participants=%v", title, conv.Participants)
		}
	case "msg":
		var message repositories.DiskMessage
		if err := json.Unmarshal(value, &message); err != nil {
			// Log the broken record and keep scanning instead of aborting.
			fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
			break
		}
		entityID = message.ID.String()
		timestamp = message.CreatedAt.Format("15:04:05")
		body := "<encrypted>"
		if secret != "" {
			if text, err := codec.Decrypt(message.TextEncrypted, secret); err == nil {
				body = text
			} else {
				body = "<decrypt failed>"
			}
		}
		detail = fmt.Sprintf("sender=%s readBy=%v text=%s", message.SenderID, message.ReadBy, body)
	case "msgref":
		detail = "-> " + string(value)
	}

	if len(entityID) > 12 {
		entityID = entityID[:12]
	}
	return []string{key, namespace, timestamp, entityID, detail}
}

func openDB(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(options)
}
