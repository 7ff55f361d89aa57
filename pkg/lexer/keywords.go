package lexer

import "strings"

// StatementKeywords start a new statement line in formatted output.
var StatementKeywords = []string{
	"CREATE", "ALTER", "SELECT", "WITH", "INSERT", "UPDATE", "DELETE", "DROP", "CALL", "DECLARE",
}

// ClauseKeywords are the top-level clause markers.
var ClauseKeywords = []string{
	"FROM", "INTO", "WHERE", "HAVING", "GROUP", "LIMIT", "OFFSET", "ORDER",
}

// BlockKeywords drive statement segmentation and routine outlines.
var BlockKeywords = []string{
	"AS", "FOR", "OR", "REPLACE", "BEGIN", "DO", "THEN", "LOOP", "END", "CURSOR",
	"DEFAULT", "HANDLER", "REFERENCES", "ON", "UNIQUE", "SPECIFIC", "EXTERNAL", "ELSE", "REPEAT",
}

// ParmTypes are the routine parameter modes.
var ParmTypes = []string{"IN", "OUT", "INOUT"}

// ReservedWords are keywords the matchers leave as plain words. Formatting
// cases them as keywords. Function names that double as keywords (LEFT,
// RIGHT, REPLACE) are left out so calls keep identifier casing.
var ReservedWords = []string{
	"ALL", "AND", "ANY", "ASC", "ATOMIC", "BETWEEN", "BY", "CALLED", "CASE", "CLOSE",
	"CONTINUE", "CROSS", "DESC", "DETERMINISTIC", "DISTINCT", "ELSEIF", "ESCAPE",
	"EXCEPT", "EXCEPTION", "EXISTS", "EXIT", "FETCH", "FULL", "FUNCTION", "GET",
	"GLOBAL", "GOTO", "GRANT", "IF", "IMMEDIATE", "INCLUDE", "INNER", "INTERSECT", "IS",
	"ITERATE", "JOIN", "LANGUAGE", "LATERAL", "LEAVE", "LIKE", "MERGE", "MODIFIES",
	"NOT", "NULL", "NULLS", "OF", "OPEN", "OUTER", "OVER", "PARTITION", "PROCEDURE",
	"READS", "RECURSIVE", "RESIGNAL", "RETURN", "RETURNS", "REVOKE", "SET", "SIGNAL",
	"SQL", "SQLEXCEPTION", "SQLSTATE", "SQLWARNING", "TABLE", "TEMPORARY", "TRIGGER",
	"UNION", "UNTIL", "USING", "VALUES", "VIEW", "WHEN", "WHILE",
}

var reserved = func() map[string]bool {
	m := make(map[string]bool)
	for _, list := range [][]string{StatementKeywords, ClauseKeywords, BlockKeywords, ParmTypes, ReservedWords} {
		for _, w := range list {
			m[w] = true
		}
	}
	return m
}()

// IsReserved reports whether word, compared case-insensitively, is a SQL
// keyword.
func IsReserved(word string) bool {
	return reserved[strings.ToUpper(word)]
}
