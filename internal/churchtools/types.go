package churchtools

import "strconv"

// Tag is a label attached to a remote group. The group reconciler uses tag
// names to decide folder eligibility.
type Tag struct {
	ID   int
	Name string
}

// Group is a remote group with its tags.
// Fields are normalized from the API response — callers never see raw API data.
type Group struct {
	ID   int
	Name string
	Tags []Tag
}

// HasTag reports whether the group carries a tag with the given name.
func (g Group) HasTag(name string) bool {
	for _, t := range g.Tags {
		if t.Name == name {
			return true
		}
	}

	return false
}

// Person is a remote person record. Memberships are fetched separately per
// person and are never cached across reconciliation passes.
type Person struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
}

// GroupMembership is one (person, group, role) association.
type GroupMembership struct {
	GroupID    int
	GroupName  string
	RoleTypeID int
}

// RoleType is a remote role taxonomy entry. The client caches the full table
// for its lifetime (role taxonomies change rarely).
type RoleType struct {
	ID       int
	Name     string
	IsLeader bool
}

// --- raw API payloads ---

// intString tolerates the API returning identifiers as either JSON numbers
// or strings (domainIdentifier fields are strings, id fields are numbers).
type intString int

func (v *intString) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" || s == "null" {
		*v = 0
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}

	*v = intString(n)

	return nil
}

type tagResponse struct {
	ID   intString `json:"id"`
	Name string    `json:"name"`
}

type groupResponse struct {
	ID   intString     `json:"id"`
	Name string        `json:"name"`
	Tags []tagResponse `json:"tags"`
}

func (r groupResponse) toGroup() Group {
	tags := make([]Tag, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, Tag{ID: int(t.ID), Name: NormalizeName(t.Name)})
	}

	return Group{
		ID:   int(r.ID),
		Name: NormalizeName(r.Name),
		Tags: tags,
	}
}

type personResponse struct {
	ID        intString `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

func (r personResponse) toPerson() Person {
	return Person{
		ID:        int(r.ID),
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}

type membershipResponse struct {
	Group struct {
		DomainIdentifier intString `json:"domainIdentifier"`
		Title            string    `json:"title"`
	} `json:"group"`
	GroupTypeRoleID intString `json:"groupTypeRoleId"`
}

func (r membershipResponse) toMembership() GroupMembership {
	return GroupMembership{
		GroupID:    int(r.Group.DomainIdentifier),
		GroupName:  NormalizeName(r.Group.Title),
		RoleTypeID: int(r.GroupTypeRoleID),
	}
}

type roleTypeResponse struct {
	ID       intString `json:"id"`
	Name     string    `json:"name"`
	IsLeader bool      `json:"isLeader"`
}

func (r roleTypeResponse) toRoleType() RoleType {
	return RoleType{
		ID:       int(r.ID),
		Name:     r.Name,
		IsLeader: r.IsLeader,
	}
}

// pagination is the server-reported paging block in list responses.
type pagination struct {
	Current  int `json:"current"`
	LastPage int `json:"lastPage"`
}

type listMeta struct {
	Pagination pagination `json:"pagination"`
}
