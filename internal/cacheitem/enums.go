package cacheitem

import "strings"

// Role is the fixed AT-SPI2 accessible role enumeration. The zero
// value, RoleUnknown, is what a freshly zeroed CacheItem carries
// before hydration populates it.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleApplication
	RoleFrame
	RoleDialog
	RoleWindow
	RolePanel
	RoleFiller
	RoleMenuBar
	RoleMenu
	RoleMenuItem
	RoleToolBar
	RolePushButton
	RoleToggleButton
	RoleCheckBox
	RoleRadioButton
	RoleComboBox
	RoleList
	RoleListItem
	RoleTree
	RoleTreeItem
	RoleTable
	RoleTableCell
	RoleTableRow
	RoleTableColumnHeader
	RoleParagraph
	RoleText
	RoleEntry
	RoleLabel
	RoleLink
	RoleImage
	RoleHeading
	RoleDocumentFrame
	RoleScrollBar
	RoleSlider
	RoleProgressBar
	RoleStatusBar
	RoleSeparator
	RoleSection
)

var roleNames = map[Role]string{
	RoleUnknown:           "unknown",
	RoleApplication:       "application",
	RoleFrame:             "frame",
	RoleDialog:            "dialog",
	RoleWindow:            "window",
	RolePanel:             "panel",
	RoleFiller:            "filler",
	RoleMenuBar:           "menu bar",
	RoleMenu:              "menu",
	RoleMenuItem:          "menu item",
	RoleToolBar:           "tool bar",
	RolePushButton:        "push button",
	RoleToggleButton:      "toggle button",
	RoleCheckBox:          "check box",
	RoleRadioButton:       "radio button",
	RoleComboBox:          "combo box",
	RoleList:              "list",
	RoleListItem:          "list item",
	RoleTree:              "tree",
	RoleTreeItem:          "tree item",
	RoleTable:             "table",
	RoleTableCell:         "table cell",
	RoleTableRow:          "table row",
	RoleTableColumnHeader: "table column header",
	RoleParagraph:         "paragraph",
	RoleText:              "text",
	RoleEntry:             "entry",
	RoleLabel:             "label",
	RoleLink:              "link",
	RoleImage:             "image",
	RoleHeading:           "heading",
	RoleDocumentFrame:     "document frame",
	RoleScrollBar:         "scroll bar",
	RoleSlider:            "slider",
	RoleProgressBar:       "progress bar",
	RoleStatusBar:         "status bar",
	RoleSeparator:         "separator",
	RoleSection:           "section",
}

// String renders the role's AT-SPI2 display name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole looks up a role by its AT-SPI2 display name, for
// deserializing events that carry role names rather than indices.
func ParseRole(name string) Role {
	name = strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if n == name {
			return r
		}
	}
	return RoleUnknown
}

// Interface is one bit of the fixed AT-SPI2 interface enumeration.
type Interface uint32

const (
	InterfaceAccessible Interface = 1 << iota
	InterfaceAction
	InterfaceComponent
	InterfaceDocument
	InterfaceEditableText
	InterfaceHyperlink
	InterfaceHypertext
	InterfaceImage
	InterfaceSelection
	InterfaceTable
	InterfaceTableCell
	InterfaceText
	InterfaceValue
	InterfaceCollection
)

// InterfaceSet is a bitset over the fixed interface enumeration.
type InterfaceSet uint32

// Has reports whether the set contains iface.
func (s InterfaceSet) Has(iface Interface) bool { return s&InterfaceSet(iface) != 0 }

// With returns a copy of s with iface added.
func (s InterfaceSet) With(iface Interface) InterfaceSet { return s | InterfaceSet(iface) }

// Without returns a copy of s with iface removed.
func (s InterfaceSet) Without(iface Interface) InterfaceSet { return s &^ InterfaceSet(iface) }

// State is one bit of the fixed AT-SPI2 state enumeration.
type State uint64

const (
	StateActive State = 1 << iota
	StateBusy
	StateChecked
	StateDefunct
	StateEditable
	StateEnabled
	StateExpandable
	StateExpanded
	StateFocusable
	StateFocused
	StateModal
	StateMultiLine
	StatePressed
	StateSelectable
	StateSelected
	StateSensitive
	StateShowing
	StateSingleLine
	StateVisible
)

var stateNames = map[string]State{
	"active":     StateActive,
	"busy":       StateBusy,
	"checked":    StateChecked,
	"defunct":    StateDefunct,
	"editable":   StateEditable,
	"enabled":    StateEnabled,
	"expandable": StateExpandable,
	"expanded":   StateExpanded,
	"focusable":  StateFocusable,
	"focused":    StateFocused,
	"modal":      StateModal,
	"multi_line": StateMultiLine,
	"pressed":    StatePressed,
	"selectable": StateSelectable,
	"selected":   StateSelected,
	"sensitive":  StateSensitive,
	"showing":    StateShowing,
	"single_line": StateSingleLine,
	"visible":    StateVisible,
}

// ParseState looks up a state by its AT-SPI2 wire name.
func ParseState(name string) (State, bool) {
	s, ok := stateNames[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// StateSet is a bitset over the fixed state enumeration.
type StateSet uint64

// Has reports whether the set contains st.
func (s StateSet) Has(st State) bool { return s&StateSet(st) != 0 }

// Insert returns a copy of s with st added.
func (s StateSet) Insert(st State) StateSet { return s | StateSet(st) }

// Remove returns a copy of s with st removed.
func (s StateSet) Remove(st State) StateSet { return s &^ StateSet(st) }
