/*
Package query parses Livestatus GET requests and evaluates them against a
store view.

Filter and Stats lines build two independent expression stacks. Each
Filter or Stats line pushes a leaf; "And: n" and "Or: n" pop n entries and
push their combination; "Negate:" wraps the top entry. Filters left on the
stack at the end are and-ed together.

	Filter: state = 2
	Filter: acknowledged = 0
	Or: 2
	Negate:

Without Stats lines, Execute projects the requested columns of every
matching row, applying Limit. With Stats lines, it aggregates instead:
counts for filter stats, sum/min/max/avg/std for reducer stats, grouped by
the Columns header when present.

Every failure is a *RequestError carrying its response status; Status maps
any error to a status code, with 500 for errors that are not request
errors.
*/
package query
