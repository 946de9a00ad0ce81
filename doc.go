/*
Package anvil is a decoder/encoder for Minecraft Java Edition's Anvil
region file format (.mca): the 32x32-chunk sector-addressed archive that
stores a world's terrain, and the per-chunk NBT tag tree each entry
decompresses to.

This is not a full implementation of every chunk field Minecraft has
ever shipped; it covers chunk parsing and block lookups across the
flattening, padded-packing, height-extension and block-states-rename
schema changes, and writing a single, fixed 1.15-era layout the game
accepts and silently upgrades on load.

Information sources:

- Region file format: https://minecraft.wiki/w/Region_file_format

- Chunk format: https://minecraft.wiki/w/Chunk_format

- NBT format: https://minecraft.wiki/w/NBT_format

- Anvil file format: https://minecraft.wiki/w/Anvil_file_format
*/
package anvil
