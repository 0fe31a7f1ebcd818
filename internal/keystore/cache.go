// Package keystore holds the node keystore credentials known to the shell.
//
// The node itself stores the keys; the shell only remembers which
// username/password pairs the operator has entered so keystore-backed
// commands can be filled in without retyping them.
package keystore

import (
	"sort"
	"sync"
)

// User is a node keystore credential.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Cache is an in-memory set of keystore users with one active user.
type Cache struct {
	mu     sync.RWMutex
	users  map[string]User
	active string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{users: make(map[string]User)}
}

// Add stores user. The first user added becomes active, as does any user
// added with makeActive.
func (c *Cache) Add(user User, makeActive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.users[user.Username] = user
	if makeActive || len(c.users) == 1 {
		c.active = user.Username
	}
}

// Remove forgets a user, clearing the active selection if it pointed there.
func (c *Cache) Remove(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.users, username)
	if c.active == username {
		c.active = ""
	}
}

// Has reports whether username is cached.
func (c *Cache) Has(username string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.users[username]
	return ok
}

// SetActive selects a cached user. It returns false if the user is unknown.
func (c *Cache) SetActive(username string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.users[username]; !ok {
		return false
	}
	c.active = username
	return true
}

// Active returns the active user, or nil if none is set.
func (c *Cache) Active() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.users[c.active]
	if !ok {
		return nil
	}
	return &u
}

// Usernames lists cached usernames in sorted order.
func (c *Cache) Usernames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.users))
	for name := range c.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// snapshot copies the cache contents for sealing.
func (c *Cache) snapshot() vaultContents {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vc := vaultContents{Active: c.active, Users: make([]User, 0, len(c.users))}
	for _, name := range sortedKeys(c.users) {
		vc.Users = append(vc.Users, c.users[name])
	}
	return vc
}

// restore merges sealed contents into the cache.
func (c *Cache) restore(vc vaultContents) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range vc.Users {
		c.users[u.Username] = u
	}
	if _, ok := c.users[vc.Active]; ok {
		c.active = vc.Active
	}
}

func sortedKeys(m map[string]User) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
