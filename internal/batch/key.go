package batch

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Prompt prefixes the coordinator knows how to group. Prompts built by the
// item parser start with one of these.
const (
	ItemParsingPrefix = "Parse the following tabletop item description"
	BasicItemPrefix   = "Identify the name and description of the tabletop item"
	ChunkPrefix       = "Extract only the following details of the tabletop item"
)

// Batch keys
const (
	KeyItemParsing = "item-parsing"
	KeyBasicItem   = "basic-item"
	genericPrefix  = "generic-"
)

const genericKeyChars = 50

var batchable = []struct {
	prefix string
	key    string
}{
	{ItemParsingPrefix, KeyItemParsing},
	{BasicItemPrefix, KeyBasicItem},
	{ChunkPrefix, ""},
}

// Key returns the batch key for a prompt template and whether the prompt can
// be batched at all. Batchable prompts without a dedicated key are grouped by
// a hash of their first 50 characters.
func Key(prompt string) (string, bool) {
	trimmed := strings.TrimSpace(prompt)
	for _, b := range batchable {
		if !strings.HasPrefix(trimmed, b.prefix) {
			continue
		}
		if b.key != "" {
			return b.key, true
		}
		return genericKey(trimmed), true
	}
	return "", false
}

func genericKey(prompt string) string {
	head := prompt
	if len(head) > genericKeyChars {
		head = head[:genericKeyChars]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(head))
	return fmt.Sprintf("%s%08x", genericPrefix, h.Sum32())
}
