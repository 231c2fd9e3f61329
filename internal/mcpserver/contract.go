package mcpserver

// RecordFormatContract describes how times and dates must be written when
// logging records through the tools.
const RecordFormatContract = `# Grape Record Format Contract

All records belong to the single configured baby. Times are wall-clock
times in the tracker's fixed UTC offset (default +08:00, no daylight saving).

## Time and date strings

| Form | Example | Meaning |
|---|---|---|
| ` + "`YYYY-MM-DD`" + ` | ` + "`2026-03-15`" + ` | midnight at the start of that day |
| ` + "`YYYY-MM-DDTHH:mm`" + ` | ` + "`2026-03-15T07:30`" + ` | that wall-clock minute (a space may replace the T) |
| ` + "`YYYY-MM-DDTHH:mm:ss`" + ` | ` + "`2026-03-15T07:30:15`" + ` | with seconds, optional fraction |
| RFC 3339 with zone | ` + "`2026-03-14T23:30:00Z`" + ` | an absolute instant, used as is |

An empty time means "now". Months are written ` + "`YYYY-MM`" + `.

Stored and returned instants are always UTC (` + "`...Z`" + `). The civil day a
record belongs to is computed at the tracker offset, so 2026-03-14T23:30:00Z
is a 07:30 feeding on 2026-03-15.

## Record types

- **feeding**: type ` + "`formula`" + ` (奶粉) or ` + "`rice_cereal`" + ` (米粉); amount in ml.
- **diaper**: type ` + "`wet`" + ` (小便), ` + "`dirty`" + ` (大便) or ` + "`both`" + ` (大小便); optional color.
- **sleep**: start with ` + "`start_sleep`" + `, close with ` + "`end_sleep`" + `. An open
  sleep counts for nothing until it ends. A sleep is nighttime when it starts
  at or after 19:00 or before 07:00.

## Ranges

Trend ranges are ` + "`7`" + `, ` + "`30`" + `, ` + "`90`" + ` or ` + "`all`" + ` (3650 days); any other
value means 30. Every day of the range is present, with zeros for empty days.
`
