/*
Package recipes holds small, single purpose wrappers around the Vulkan API.

Every recipe demonstrates one discrete Vulkan operation: it fills in the native
create-info structure, makes the call and turns a failing vk.Result into an
error. Recipes which only record commands into a command buffer return nothing
since Vulkan does not report errors for them.

Nothing here owns the objects it creates. Callers wrap the returned handles
with the vkhandle package, or destroy them by hand, in reverse creation order.

Strings handed to Vulkan have to be NUL terminated. Recipes accept plain Go
strings and add the terminator themselves where needed, see SafeStrings.
*/
package recipes
