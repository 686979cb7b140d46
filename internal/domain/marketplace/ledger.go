package marketplace

import (
	"context"
	"iter"
)

const defaultLedgerPage = 100

// Ledger yields a conversation's messages after a cursor, fetching one page at
// a time as the consumer ranges. The sequence ends at the current tail; ranging
// again with a later cursor resumes where a previous pass stopped.
func Ledger(ctx context.Context, reader MessageReader, conversationID string, after MessageCursor, pageSize int) iter.Seq2[*Message, error] {
	if pageSize <= 0 {
		pageSize = defaultLedgerPage
	}
	return func(yield func(*Message, error) bool) {
		cursor := after
		for {
			page, err := reader.ListAfter(ctx, conversationID, cursor, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
				cursor = m.Cursor()
			}
			if len(page) < pageSize {
				return
			}
		}
	}
}
