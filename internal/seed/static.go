// ABOUTME: Static fallback data when OpenAI API key is not available.
// ABOUTME: Provides a small set of realistic-looking customer rows.

package seed

// staticRows returns count rows padded or truncated to width cells.
func staticRows(count, width int) [][]string {
	templates := [][]string{
		{"Alice Chen", "alice.chen@techcorp.com", "Portland", "34"},
		{"Bob Martinez", "bob.martinez@acmeinc.com", "Austin", "41"},
		{"Sarah Johnson", "sarah.johnson@techcorp.com", "Seattle", "29"},
		{"Dave Wilson", "dave.wilson@techcorp.com", "Denver", "38"},
		{"Emma Davis", "emma.davis@vendor.io", "Chicago", "45"},
		{"Mike Brown", "mike.brown@techcorp.com", "Boston", "31"},
		{"Jenna Taylor", "jenna.taylor@clientco.com", "Miami", "27"},
		{"Alex Rivera", "alex.rivera@techcorp.com", "Phoenix", "36"},
		{"Priya Patel", "priya.patel@clientco.com", "San Jose", "33"},
		{"Tom Nguyen", "tom.nguyen@vendor.io", "Houston", "52"},
	}

	rows := make([][]string, 0, count)
	for i := 0; i < count; i++ {
		src := templates[i%len(templates)]
		row := make([]string, width)
		for j := 0; j < width; j++ {
			if j < len(src) {
				row[j] = src[j]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
