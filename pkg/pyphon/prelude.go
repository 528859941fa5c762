// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package pyphon

// PreludeKey is the store metadata key whose value, when set, replaces
// DefaultPrelude.
const PreludeKey = "__prelude__"

// DefaultPrelude contains the builtins written in pyphon itself. It is
// loaded into the builtins namespace unless WithNoPrelude is given.
const DefaultPrelude = `
def abs(x):
    return -x if x < 0 else x

def all(iterable):
    for element in iterable:
        if not element:
            return False
    return True

def any(iterable):
    for element in iterable:
        if element:
            return True
    return False

def cmp(x, y):
    if x == y: return 0
    if x < y: return -1
    return 1

def filter(function, iterable):
    result = []
    for element in iterable:
        if function(element):
            result.append(element)
    return result

def map(function, iterable):
    result = []
    for element in iterable:
        result.append(function(element))
    return result

def max(iterable):
    x = None
    for element in iterable:
        if x is None or element > x:
            x = element
    if x is None:
        raise ValueError('max() arg is an empty sequence')
    return x

def min(iterable):
    x = None
    for element in iterable:
        if x is None or element < x:
            x = element
    if x is None:
        raise ValueError('min() arg is an empty sequence')
    return x

def reversed(sequence):
    result = []
    length = len(sequence)
    while length > 0:
        length -= 1
        result.append(sequence[length])
    return result

def sum(iterable):
    x = 0
    for element in iterable:
        x += element
    return x

def zip(iterable1, iterable2):
    a = list(iterable1)
    b = list(iterable2)
    result = []
    i = 0
    while i < len(a) and i < len(b):
        result.append((a[i], b[i]))
        i += 1
    return result
`
