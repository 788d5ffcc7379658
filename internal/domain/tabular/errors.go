package tabular

import "errors"

// ErrUnreadableTable is returned when uploaded data cannot be parsed as a table.
var ErrUnreadableTable = errors.New("table could not be read")
