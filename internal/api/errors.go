package api

import "errors"

var errListItemNotGuarded = errors.New("list item route is missing the ownership guard")
